package requests

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryLedger keeps requests in process memory. The counter restarts at 1 when
// the process restarts, so identifiers are only unique within one run.
type MemoryLedger struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Request
	now    func() time.Time
}

// NewMemoryLedger returns an empty ledger whose first identifier is 1.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		nextID: 1,
		items:  make(map[int64]Request),
		now:    time.Now,
	}
}

func (l *MemoryLedger) Create(_ context.Context, d Draft) (Request, error) {
	if err := d.Validate(); err != nil {
		return Request{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	r := Request{
		ID:            l.nextID,
		SubmitterID:   d.SubmitterID,
		SubmitterName: d.SubmitterName,
		Kind:          d.Kind,
		Reason:        d.Reason,
		Details:       d.Details,
		Status:        StatusPending,
		CreatedAt:     l.now().UTC(),
	}
	l.nextID++
	l.items[r.ID] = r
	return r, nil
}

func (l *MemoryLedger) Decide(_ context.Context, id int64, outcome Outcome, adminID int64) (Request, error) {
	status, err := outcome.Status()
	if err != nil {
		return Request{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.items[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if !r.Pending() {
		return r, ErrAlreadyDecided
	}
	at := l.now().UTC()
	r.Status = status
	r.DecidedBy = &adminID
	r.DecidedAt = &at
	l.items[id] = r
	return r, nil
}

func (l *MemoryLedger) Get(_ context.Context, id int64) (Request, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.items[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return r, nil
}

func (l *MemoryLedger) ListBySubmitter(_ context.Context, submitterID int64, limit int) ([]Request, error) {
	l.mu.Lock()
	var out []Request
	for _, r := range l.items {
		if r.SubmitterID == submitterID {
			out = append(out, r)
		}
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *MemoryLedger) List(_ context.Context) ([]Request, error) {
	l.mu.Lock()
	out := make([]Request, 0, len(l.items))
	for _, r := range l.items {
		out = append(out, r)
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
