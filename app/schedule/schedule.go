// Package schedule holds the free-text dates of the team's fixed meetings.
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Meeting identifies one of the fixed meetings.
type Meeting string

const (
	MeetingGeneral  Meeting = "general"
	MeetingSupport1 Meeting = "support1"
	MeetingSupport2 Meeting = "support2"
	MeetingCentral  Meeting = "central"
)

// Unset is shown until an administrator sets a date.
const Unset = "غير محدد"

// ErrUnknownMeeting is returned for keys outside the fixed set.
var ErrUnknownMeeting = errors.New("schedule: unknown meeting")

var meetings = []Meeting{MeetingGeneral, MeetingSupport1, MeetingSupport2, MeetingCentral}

var labels = map[Meeting]string{
	MeetingGeneral:  "الاجتماع العام",
	MeetingSupport1: "اجتماع فريق الدعم الاول",
	MeetingSupport2: "فريق الدعم الثاني",
	MeetingCentral:  "الفريق المركزي",
}

// Meetings lists the fixed meetings in display order.
func Meetings() []Meeting {
	return append([]Meeting(nil), meetings...)
}

// ParseMeeting validates a key coming from a callback payload.
func ParseMeeting(s string) (Meeting, error) {
	m := Meeting(s)
	if _, ok := labels[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMeeting, s)
	}
	return m, nil
}

// Label is the Arabic display name.
func (m Meeting) Label() string {
	return labels[m]
}

// Entry is a meeting with its current date text.
type Entry struct {
	Meeting Meeting
	Value   string
}

// Store reads and overwrites meeting dates. Overwrites keep no history.
type Store interface {
	Get(ctx context.Context, m Meeting) (string, error)
	Set(ctx context.Context, m Meeting, value string) error
	All(ctx context.Context) ([]Entry, error)
}

// MemoryStore is a mutex-guarded map seeded with Unset.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Meeting]string
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{values: make(map[Meeting]string, len(meetings))}
	for _, m := range meetings {
		s.values[m] = Unset
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, m Meeting) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[m]
	if !ok {
		return "", ErrUnknownMeeting
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, m Meeting, value string) error {
	if _, ok := labels[m]; !ok {
		return ErrUnknownMeeting
	}
	s.mu.Lock()
	s.values[m] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) All(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, 0, len(meetings))
	for _, m := range meetings {
		v, _ := s.Get(ctx, m)
		out = append(out, Entry{Meeting: m, Value: v})
	}
	return out, nil
}

// SQLStore keeps dates in the meetings table. Missing rows read as Unset.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, m Meeting) (string, error) {
	if _, ok := labels[m]; !ok {
		return "", ErrUnknownMeeting
	}
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT value FROM meetings WHERE key = ?`), string(m))
	if errors.Is(err, sql.ErrNoRows) {
		return Unset, nil
	}
	if err != nil {
		return "", fmt.Errorf("get meeting %s: %w", m, err)
	}
	return v, nil
}

func (s *SQLStore) Set(ctx context.Context, m Meeting, value string) error {
	if _, ok := labels[m]; !ok {
		return ErrUnknownMeeting
	}
	q := s.db.Rebind(`INSERT INTO meetings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, q, string(m), value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set meeting %s: %w", m, err)
	}
	return nil
}

func (s *SQLStore) All(ctx context.Context) ([]Entry, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM meetings`); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	byKey := make(map[Meeting]string, len(rows))
	for _, r := range rows {
		byKey[Meeting(r.Key)] = r.Value
	}
	out := make([]Entry, 0, len(meetings))
	for _, m := range meetings {
		v, ok := byKey[m]
		if !ok {
			v = Unset
		}
		out = append(out, Entry{Meeting: m, Value: v})
	}
	return out, nil
}

// Seed inserts Unset rows for meetings that have none, leaving existing dates alone.
func (s *SQLStore) Seed(ctx context.Context) (int, error) {
	q := s.db.Rebind(`INSERT INTO meetings (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT (key) DO NOTHING`)
	inserted := 0
	for _, m := range meetings {
		res, err := s.db.ExecContext(ctx, q, string(m), Unset, time.Now().UTC())
		if err != nil {
			return inserted, fmt.Errorf("seed meeting %s: %w", m, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
