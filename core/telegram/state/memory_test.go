package state

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(MemoryOptions{})

	if _, ok, err := store.Get(ctx, 1); ok || err != nil {
		t.Fatalf("expected no session, ok=%v err=%v", ok, err)
	}

	sess := NewSession(1, "excuse_name").With("name", "Ahmad Ali", "excuse_activity")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.State != "excuse_activity" {
		t.Fatalf("state = %q", got.State)
	}
	if name, _ := got.Field("name"); name != "Ahmad Ali" {
		t.Fatalf("name = %q", name)
	}

	// mutations of a returned copy must not leak into the store
	got.Fields["name"] = "changed"
	again, _, _ := store.Get(ctx, 1)
	if name, _ := again.Field("name"); name != "Ahmad Ali" {
		t.Fatalf("store was mutated through returned session: %q", name)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatal("session still present after delete")
	}
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryStoreIdleExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(MemoryOptions{IdleTimeout: time.Hour, Now: clock.now})

	_ = store.Put(ctx, NewSession(1, "leave_name"))
	_ = store.Put(ctx, NewSession(2, "leave_name"))

	clock.advance(30 * time.Minute)
	_ = store.Put(ctx, NewSession(2, "leave_reason"))

	clock.advance(45 * time.Minute)
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatal("session 1 should have expired")
	}
	if _, ok, _ := store.Get(ctx, 2); !ok {
		t.Fatal("session 2 was refreshed and must still be active")
	}

	clock.advance(2 * time.Hour)
	if removed := store.Sweep(ctx); removed != 1 {
		t.Fatalf("sweep removed %d, want 1", removed)
	}
	if store.Len() != 0 {
		t.Fatalf("len = %d after sweep", store.Len())
	}
}

func TestMemoryStoreWithoutTimeoutNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	store := NewMemoryStore(MemoryOptions{Now: clock.now})
	_ = store.Put(ctx, NewSession(9, "excuse_name"))
	clock.advance(24 * 365 * time.Hour)
	if _, ok, _ := store.Get(ctx, 9); !ok {
		t.Fatal("session without idle timeout must never expire")
	}
	if store.Sweep(ctx) != 0 {
		t.Fatal("sweep must be a no-op without idle timeout")
	}
}
