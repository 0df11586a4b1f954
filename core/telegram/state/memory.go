package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/hrbot/core/logger"
)

// MemoryOptions configures the in-memory store.
type MemoryOptions struct {
	// IdleTimeout expires sessions untouched for longer than this; 0 keeps them forever.
	IdleTimeout time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// MemoryStore is a process-local Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	idle     time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		sessions: make(map[int64]Session),
		idle:     opts.IdleTimeout,
		now:      now,
	}
}

// Get returns the session for a user if it exists and has not expired.
func (m *MemoryStore) Get(_ context.Context, userID int64) (Session, bool, error) {
	m.mu.RLock()
	sess, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if m.expired(sess) {
		m.mu.Lock()
		if cur, still := m.sessions[userID]; still && m.expired(cur) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return Session{}, false, nil
	}
	return sess.clone(), true, nil
}

// Put stores a copy of the session, stamping UpdatedAt.
func (m *MemoryStore) Put(_ context.Context, s Session) error {
	s = s.clone()
	s.UpdatedAt = m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

// Delete removes the entire session for a user.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep(ctx context.Context) int {
	if m.idle <= 0 {
		return 0
	}
	m.mu.Lock()
	removed := 0
	for id, sess := range m.sessions {
		if m.expired(sess) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()
	if removed > 0 {
		logger.SVCSessions.LogAttrs(ctx, slog.LevelDebug, "sessions swept",
			slog.String("event", "sessions.sweep"),
			slog.Int("count", removed),
		)
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

func (m *MemoryStore) expired(s Session) bool {
	return m.idle > 0 && m.now().Sub(s.UpdatedAt) > m.idle
}
