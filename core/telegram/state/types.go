package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and collected answers for a user.
type Session struct {
	UserID    int64             `json:"user_id"`
	State     State             `json:"state"`
	Fields    map[string]string `json:"fields,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns a session positioned at st with no collected fields.
func NewSession(userID int64, st State) Session {
	return Session{UserID: userID, State: st, Fields: make(map[string]string)}
}

// Field returns a collected answer.
func (s Session) Field(key string) (string, bool) {
	v, ok := s.Fields[key]
	return v, ok
}

// With returns a copy of the session with key set to value and the state moved to next.
func (s Session) With(key, value string, next State) Session {
	out := s.clone()
	if key != "" {
		out.Fields[key] = value
	}
	out.State = next
	return out
}

func (s Session) clone() Session {
	out := s
	out.Fields = make(map[string]string, len(s.Fields)+1)
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	return out
}

// Store keeps at most one session per user.
// Implementations must serialize writes per user id.
type Store interface {
	// Get returns the active session; ok is false when the user is idle.
	Get(ctx context.Context, userID int64) (Session, bool, error)
	// Put replaces the user's session.
	Put(ctx context.Context, s Session) error
	// Delete discards the user's session; deleting a missing session is not an error.
	Delete(ctx context.Context, userID int64) error
}
