package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/hrbot/core/config"
	"github.com/m3rciful/hrbot/core/telegram/middleware"
	"github.com/m3rciful/hrbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain: recover, the optional per-user
// rate limit, update logging and outbound message counters. Throttled updates
// are answered by fb.RateLimited when fb is set.
func DefaultMiddlewares(cfg *coreconfig.Config, fb ui.FallbackProvider) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if limit, ok := rateLimit(cfg, fb); ok {
		mws = append(mws, Middleware{Name: "rate_limit", Use: limit})
	}
	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimit(cfg *coreconfig.Config, fb ui.FallbackProvider) (tele.MiddlewareFunc, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return nil, false
	}
	opts := middleware.RateLimitOptions{
		Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:  make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates)),
	}
	for _, t := range cfg.RateLimit.ExcludeUpdates {
		opts.Exclude[strings.ToLower(t)] = struct{}{}
	}
	if fb != nil {
		opts.OnLimited = fb.RateLimited()
	}
	return middleware.RateLimitMiddleware(opts), true
}
