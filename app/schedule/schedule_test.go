package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/hrbot/app/migrations/migrationstest"
)

func TestStores(t *testing.T) {
	cases := []struct {
		name  string
		store func(t *testing.T) Store
	}{
		{"memory", func(*testing.T) Store { return NewMemoryStore() }},
		{"sqlite", func(t *testing.T) Store { return NewSQLStore(migrationstest.OpenSQLite(t)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.store(t)
			ctx := context.Background()

			if v, err := s.Get(ctx, MeetingCentral); err != nil || v != Unset {
				t.Fatalf("default = %q, %v", v, err)
			}
			if err := s.Set(ctx, MeetingCentral, "2024-05-01 18:00"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, MeetingCentral, "الخميس"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if v, _ := s.Get(ctx, MeetingCentral); v != "الخميس" {
				t.Fatalf("value = %q", v)
			}
			all, _ := s.All(ctx)
			if len(all) != 4 || all[0].Meeting != MeetingGeneral || all[3].Value != "الخميس" {
				t.Fatalf("all = %+v", all)
			}
			if err := s.Set(ctx, "picnic", "x"); !errors.Is(err, ErrUnknownMeeting) {
				t.Fatalf("unknown meeting err = %v", err)
			}
		})
	}
}

func TestSQLSeedKeepsExistingDates(t *testing.T) {
	s := NewSQLStore(migrationstest.OpenSQLite(t))
	ctx := context.Background()
	if err := s.Set(ctx, MeetingGeneral, "غداً"); err != nil {
		t.Fatalf("set: %v", err)
	}
	n, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("seeded %d rows, want 3", n)
	}
	if v, _ := s.Get(ctx, MeetingGeneral); v != "غداً" {
		t.Fatalf("seed overwrote value: %q", v)
	}
}

func TestParseMeeting(t *testing.T) {
	if m, err := ParseMeeting("support2"); err != nil || m.Label() != "فريق الدعم الثاني" {
		t.Fatalf("parse = %q, %v", m, err)
	}
	if _, err := ParseMeeting("x"); !errors.Is(err, ErrUnknownMeeting) {
		t.Fatalf("err = %v", err)
	}
}
