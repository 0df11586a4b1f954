package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/gateway/gatewaytest"
	"github.com/m3rciful/hrbot/app/users"
)

func registry(t *testing.T, ids ...int64) *users.MemoryRegistry {
	t.Helper()
	reg := users.NewMemoryRegistry()
	for _, id := range ids {
		_ = reg.Add(context.Background(), id)
	}
	return reg
}

func TestSendContinuesPastFailures(t *testing.T) {
	gw := gatewaytest.New(2)
	b := New(gw, registry(t, 1, 2, 3), time.Millisecond)
	var slept []time.Duration
	b.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	res, err := b.Send(context.Background(), "اجتماع اليوم")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Sent != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	var de *gateway.DeliveryError
	if !errors.As(res.Errors, &de) || de.Recipient != 2 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if len(slept) != 2 || slept[0] != time.Millisecond {
		t.Fatalf("delays = %v", slept)
	}
	if res.ID == "" {
		t.Fatal("missing broadcast id")
	}
}

func TestSendStopsOnCancel(t *testing.T) {
	gw := gatewaytest.New()
	b := New(gw, registry(t, 1, 2, 3), 0)
	if b.delay != DefaultDelay {
		t.Fatalf("delay = %v", b.delay)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	res, err := b.Send(ctx, "x")
	if !IsInterrupted(err) {
		t.Fatalf("err = %v, want cancellation", err)
	}
	if res.Sent != 1 || gw.SentCount() != 1 {
		t.Fatalf("sent = %d, recorded = %d", res.Sent, gw.SentCount())
	}
}
