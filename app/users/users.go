// Package users remembers everyone who has talked to the bot; the list is the
// broadcast audience. Membership is never removed.
package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Registry is an append-only set of user ids.
type Registry interface {
	Add(ctx context.Context, userID int64) error
	All(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// MemoryRegistry keeps ids in process memory.
type MemoryRegistry struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{ids: make(map[int64]struct{})}
}

func (m *MemoryRegistry) Add(_ context.Context, userID int64) error {
	if userID == 0 {
		return nil
	}
	m.mu.Lock()
	m.ids[userID] = struct{}{}
	m.mu.Unlock()
	return nil
}

// All returns ids in ascending order.
func (m *MemoryRegistry) All(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	out := make([]int64, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MemoryRegistry) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids), nil
}

// SQLRegistry stores ids in the users table.
type SQLRegistry struct {
	db *sqlx.DB
}

func NewSQLRegistry(db *sqlx.DB) *SQLRegistry {
	return &SQLRegistry{db: db}
}

func (s *SQLRegistry) Add(ctx context.Context, userID int64) error {
	if userID == 0 {
		return nil
	}
	q := s.db.Rebind(`INSERT INTO users (user_id, first_seen) VALUES (?, ?) ON CONFLICT (user_id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, q, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add user %d: %w", userID, err)
	}
	return nil
}

func (s *SQLRegistry) All(ctx context.Context) ([]int64, error) {
	var out []int64
	if err := s.db.SelectContext(ctx, &out, `SELECT user_id FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *SQLRegistry) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
