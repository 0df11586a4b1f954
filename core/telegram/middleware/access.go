package middleware

import (
	"log/slog"

	"github.com/m3rciful/hrbot/core/logger"
	tghelpers "github.com/m3rciful/hrbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	// IsAdmin consults the administrator allow-list.
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(c tele.Context) bool {
	u := c.Sender()
	return u != nil && o.IsAdmin != nil && o.IsAdmin(u.ID)
}

// AdminOnlyMiddleware lets only allow-listed users reach downstream handlers.
// Without an IsAdmin func nobody is allowed.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.allowed(c) {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			logger.TG.LogAttrs(ctx, slog.LevelWarn, "access.denied",
				slog.String("status", "denied"),
				slog.String("outcome", "unauthorized"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
