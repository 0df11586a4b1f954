package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const requestColumns = `id, submitter_id, submitter_name, kind, reason, details, status, created_at, decided_by, decided_at`

// SQLLedger stores requests in the requests table. Identifiers come from the
// database sequence, so they survive restarts.
type SQLLedger struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLLedger wraps an open connection; migrations must already be applied.
func NewSQLLedger(db *sqlx.DB) *SQLLedger {
	return &SQLLedger{db: db, now: time.Now}
}

func (l *SQLLedger) Create(ctx context.Context, d Draft) (Request, error) {
	if err := d.Validate(); err != nil {
		return Request{}, err
	}
	q := l.db.Rebind(`INSERT INTO requests (submitter_id, submitter_name, kind, reason, details, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING ` + requestColumns)
	var r Request
	err := l.db.GetContext(ctx, &r, q,
		d.SubmitterID, d.SubmitterName, string(d.Kind), d.Reason, d.Details, string(StatusPending), l.now().UTC())
	if err != nil {
		return Request{}, fmt.Errorf("insert request: %w", err)
	}
	return r, nil
}

// Decide uses a conditional UPDATE so that two concurrent decisions cannot both win.
func (l *SQLLedger) Decide(ctx context.Context, id int64, outcome Outcome, adminID int64) (Request, error) {
	status, err := outcome.Status()
	if err != nil {
		return Request{}, err
	}
	q := l.db.Rebind(`UPDATE requests SET status = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ? RETURNING ` + requestColumns)
	var r Request
	err = l.db.GetContext(ctx, &r, q, string(status), adminID, l.now().UTC(), id, string(StatusPending))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Request{}, fmt.Errorf("decide request %d: %w", id, err)
	}
	cur, gerr := l.Get(ctx, id)
	if gerr != nil {
		return Request{}, gerr
	}
	return cur, ErrAlreadyDecided
}

func (l *SQLLedger) Get(ctx context.Context, id int64) (Request, error) {
	var r Request
	err := l.db.GetContext(ctx, &r, l.db.Rebind(`SELECT `+requestColumns+` FROM requests WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("get request %d: %w", id, err)
	}
	return r, nil
}

func (l *SQLLedger) ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests WHERE submitter_id = ? ORDER BY id DESC`
	args := []any{submitterID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var out []Request
	if err := l.db.SelectContext(ctx, &out, l.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list requests of %d: %w", submitterID, err)
	}
	return out, nil
}

func (l *SQLLedger) List(ctx context.Context) ([]Request, error) {
	var out []Request
	if err := l.db.SelectContext(ctx, &out, `SELECT `+requestColumns+` FROM requests ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}
