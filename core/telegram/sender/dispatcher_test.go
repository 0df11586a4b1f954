package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func dialErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	defer d.Close()

	var calls atomic.Int32
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return dialErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	defer d.Close()

	boom := errors.New("bot was blocked by the user")
	var calls atomic.Int32
	err := d.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls.Load() != 1 || d.ErrorCount() != 1 {
		t.Fatalf("calls = %d errors = %d", calls.Load(), d.ErrorCount())
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	got := sanitizeErrorMessage(errors.New(`Post "https://api.telegram.org/bot123:ABC-def/sendMessage": EOF`))
	if got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF` {
		t.Fatalf("got %q", got)
	}
}
