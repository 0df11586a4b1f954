package requests

import "context"

// Ledger converts drafts into identified requests and tracks their status.
type Ledger interface {
	// Create assigns the next identifier and stores the request as pending.
	// Identifiers are unique and strictly increasing even under concurrent calls.
	Create(ctx context.Context, d Draft) (Request, error)
	// Decide moves a pending request to approved or rejected exactly once.
	Decide(ctx context.Context, id int64, outcome Outcome, adminID int64) (Request, error)
	// Get returns a single request.
	Get(ctx context.Context, id int64) (Request, error)
	// ListBySubmitter returns the newest requests of a user first; limit <= 0 means all.
	ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]Request, error)
	// List returns every request ordered by identifier.
	List(ctx context.Context) ([]Request, error)
}
