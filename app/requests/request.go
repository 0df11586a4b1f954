// Package requests owns identifier allocation and approval status of submitted
// excuse and leave requests.
package requests

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes the two submission workflows.
type Kind string

const (
	KindExcuse Kind = "excuse"
	KindLeave  Kind = "leave"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindExcuse || k == KindLeave
}

// Label is the Arabic name shown to users.
func (k Kind) Label() string {
	switch k {
	case KindExcuse:
		return "اعتذار"
	case KindLeave:
		return "إجازة"
	}
	return string(k)
}

// Status is the approval state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "قيد المراجعة"
	case StatusApproved:
		return "مقبول"
	case StatusRejected:
		return "مرفوض"
	}
	return string(s)
}

// Outcome is an administrator decision.
type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
)

// Status maps the decision onto the resulting request status.
func (o Outcome) Status() (Status, error) {
	switch o {
	case OutcomeApprove:
		return StatusApproved, nil
	case OutcomeReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("requests: unknown outcome %q", string(o))
}

var (
	// ErrNotFound is returned when the identifier is unknown.
	ErrNotFound = errors.New("requests: not found")
	// ErrAlreadyDecided is returned when a request has already been approved or rejected.
	ErrAlreadyDecided = errors.New("requests: already decided")
	// ErrInvalidDraft is returned when a draft lacks mandatory data.
	ErrInvalidDraft = errors.New("requests: invalid draft")
)

// Request is a confirmed, identifier-bearing submission.
type Request struct {
	ID            int64      `db:"id"`
	SubmitterID   int64      `db:"submitter_id"`
	SubmitterName string     `db:"submitter_name"`
	Kind          Kind       `db:"kind"`
	Reason        string     `db:"reason"`
	Details       string     `db:"details"`
	Status        Status     `db:"status"`
	CreatedAt     time.Time  `db:"created_at"`
	DecidedBy     *int64     `db:"decided_by"`
	DecidedAt     *time.Time `db:"decided_at"`
}

// Pending reports whether the request still awaits a decision.
func (r Request) Pending() bool {
	return r.Status == StatusPending
}

// Draft carries the answers of a completed form; it has no identifier yet.
type Draft struct {
	SubmitterID   int64
	SubmitterName string
	Kind          Kind
	Reason        string
	Details       string
}

// Validate checks that the draft can become a request. Free-text answers are
// deliberately accepted verbatim; only the structural fields are checked.
func (d Draft) Validate() error {
	if d.SubmitterID == 0 {
		return fmt.Errorf("%w: missing submitter", ErrInvalidDraft)
	}
	if strings.TrimSpace(d.SubmitterName) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDraft)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDraft, string(d.Kind))
	}
	return nil
}
