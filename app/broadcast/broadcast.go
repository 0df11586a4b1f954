// Package broadcast sends one text to every registered user.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/metrics"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/logger"
)

// DefaultDelay spaces out messages to stay below Telegram's flood limits.
const DefaultDelay = 50 * time.Millisecond

// Result summarizes one broadcast run.
type Result struct {
	ID     string
	Sent   int
	Failed int
	// Errors aggregates per-recipient delivery errors.
	Errors error
}

// Broadcaster fans a message out to the user registry.
type Broadcaster struct {
	gw    gateway.Gateway
	users users.Registry
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a broadcaster; delay <= 0 selects DefaultDelay.
func New(gw gateway.Gateway, reg users.Registry, delay time.Duration) *Broadcaster {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Broadcaster{gw: gw, users: reg, delay: delay, sleep: sleepCtx}
}

// Send delivers text to every registered user. Delivery failures are logged and
// counted but never stop the loop; only cancellation or a registry failure
// returns an error.
func (b *Broadcaster) Send(ctx context.Context, text string) (Result, error) {
	res := Result{ID: uuid.NewString()}
	recipients, err := b.users.All(ctx)
	if err != nil {
		return res, fmt.Errorf("broadcast: load recipients: %w", err)
	}
	start := time.Now()
	logger.SVCBroadcast.Info("broadcast started",
		slog.String("event", "broadcast.start"),
		slog.String("broadcast_id", res.ID),
		slog.Int("recipients", len(recipients)),
	)

	var errs *multierror.Error
	for i, to := range recipients {
		if i > 0 {
			if err := b.sleep(ctx, b.delay); err != nil {
				return b.finish(res, errs, start, err), err
			}
		}
		if _, err := b.gw.Send(ctx, to, text, nil); err != nil {
			res.Failed++
			errs = multierror.Append(errs, gateway.Deliver("broadcast", to, err))
			metrics.RecordDeliveryFailure("broadcast")
			logger.SVCBroadcast.Warn("broadcast delivery failed",
				slog.String("event", "broadcast.send"),
				slog.String("broadcast_id", res.ID),
				slog.Int64("user_id", to),
				slog.String("err", err.Error()),
			)
			continue
		}
		res.Sent++
	}
	return b.finish(res, errs, start, nil), nil
}

func (b *Broadcaster) finish(res Result, errs *multierror.Error, start time.Time, cause error) Result {
	res.Errors = errs.ErrorOrNil()
	metrics.RecordBroadcast(res.Sent, res.Failed)
	attrs := []any{
		slog.String("event", "broadcast.done"),
		slog.String("broadcast_id", res.ID),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("err", cause.Error()))
		logger.SVCBroadcast.Warn("broadcast interrupted", attrs...)
		return res
	}
	logger.SVCBroadcast.Info("broadcast finished", attrs...)
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsInterrupted reports whether err came from cancellation of the run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
