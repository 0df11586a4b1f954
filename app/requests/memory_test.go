package requests

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func excuse(user int64) Draft {
	return Draft{SubmitterID: user, SubmitterName: "أحمد", Kind: KindExcuse, Reason: "مبادرة"}
}

func TestMemoryLedgerIDsAreUniqueUnderConcurrency(t *testing.T) {
	l := NewMemoryLedger()
	const n = 64
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			r, err := l.Create(context.Background(), excuse(u))
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- r.ID
		}(int64(i + 1))
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	for id := int64(1); id <= n; id++ {
		if !seen[id] {
			t.Fatalf("missing id %d", id)
		}
	}
}

func TestMemoryLedgerCreateIsIncreasing(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	a, _ := l.Create(ctx, excuse(1))
	b, _ := l.Create(ctx, Draft{SubmitterID: 2, SubmitterName: "سارة", Kind: KindLeave, Reason: "سفر"})
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", a.ID, b.ID)
	}
	if !a.Pending() || a.CreatedAt.IsZero() {
		t.Fatalf("unexpected new request: %+v", a)
	}
}

func TestMemoryLedgerRejectsInvalidDraft(t *testing.T) {
	l := NewMemoryLedger()
	_, err := l.Create(context.Background(), Draft{SubmitterID: 1, SubmitterName: "x", Kind: "vacation"})
	if !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("err = %v, want ErrInvalidDraft", err)
	}
}

func TestMemoryLedgerDecideOnce(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	r, _ := l.Create(ctx, excuse(1))

	got, err := l.Decide(ctx, r.ID, OutcomeApprove, 99)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if got.Status != StatusApproved || got.DecidedBy == nil || *got.DecidedBy != 99 || got.DecidedAt == nil {
		t.Fatalf("unexpected decided request: %+v", got)
	}

	again, err := l.Decide(ctx, r.ID, OutcomeReject, 98)
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("err = %v, want ErrAlreadyDecided", err)
	}
	if again.Status != StatusApproved {
		t.Fatalf("status changed to %s", again.Status)
	}
}

func TestMemoryLedgerUnknownID(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	if _, err := l.Decide(ctx, 42, OutcomeApprove, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("decide err = %v", err)
	}
	if _, err := l.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get err = %v", err)
	}
	all, _ := l.List(ctx)
	if len(all) != 0 {
		t.Fatalf("unknown id created entries: %v", all)
	}
}

func TestMemoryLedgerListBySubmitter(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = l.Create(ctx, excuse(7))
	}
	_, _ = l.Create(ctx, excuse(8))

	mine, _ := l.ListBySubmitter(ctx, 7, 2)
	if len(mine) != 2 || mine[0].ID != 3 || mine[1].ID != 2 {
		t.Fatalf("newest-first with limit broken: %+v", mine)
	}
	all, _ := l.List(ctx)
	if len(all) != 4 || all[0].ID != 1 {
		t.Fatalf("list = %+v", all)
	}
}

func TestOutcomeStatus(t *testing.T) {
	if s, _ := OutcomeReject.Status(); s != StatusRejected {
		t.Fatalf("reject -> %s", s)
	}
	if _, err := Outcome("maybe").Status(); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}
