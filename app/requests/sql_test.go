package requests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m3rciful/hrbot/app/migrations/migrationstest"
)

func TestSQLLedgerLifecycle(t *testing.T) {
	l := NewSQLLedger(migrationstest.OpenSQLite(t))
	ctx := context.Background()

	a, err := l.Create(ctx, excuse(5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := l.Create(ctx, Draft{SubmitterID: 5, SubmitterName: "أحمد", Kind: KindLeave, Reason: "سفر", Details: "أسبوع"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not increasing: %d then %d", a.ID, b.ID)
	}

	got, err := l.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != KindLeave || got.Details != "أسبوع" || !got.Pending() {
		t.Fatalf("unexpected row: %+v", got)
	}

	dec, err := l.Decide(ctx, b.ID, OutcomeReject, 11)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if dec.Status != StatusRejected || dec.DecidedBy == nil || *dec.DecidedBy != 11 {
		t.Fatalf("unexpected decision: %+v", dec)
	}
	if _, err := l.Decide(ctx, b.ID, OutcomeApprove, 12); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second decide err = %v", err)
	}
	if _, err := l.Decide(ctx, 999, OutcomeApprove, 12); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown decide err = %v", err)
	}

	mine, err := l.ListBySubmitter(ctx, 5, 0)
	if err != nil || len(mine) != 2 || mine[0].ID != b.ID {
		t.Fatalf("list by submitter = %+v, %v", mine, err)
	}
	all, err := l.List(ctx)
	if err != nil || len(all) != 2 || all[0].ID != a.ID {
		t.Fatalf("list = %+v, %v", all, err)
	}
}

func TestSQLLedgerConcurrentCreate(t *testing.T) {
	l := NewSQLLedger(migrationstest.OpenSQLite(t))
	const n = 16
	var (
		mu  sync.Mutex
		ids = map[int64]bool{}
		wg  sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			r, err := l.Create(context.Background(), excuse(u))
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			ids[r.ID] = true
			mu.Unlock()
		}(int64(i + 1))
	}
	wg.Wait()
	if len(ids) != n {
		t.Fatalf("got %d unique ids, want %d", len(ids), n)
	}
}
