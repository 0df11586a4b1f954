package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/hrbot/core/logger"
	tghelpers "github.com/m3rciful/hrbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrHandlerPanic marks errors produced from a recovered handler panic.
var ErrHandlerPanic = errors.New("handler panic")

// RecoverMiddleware turns a handler panic into an ErrHandlerPanic error so the
// update is logged as failed and the poller keeps running.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			logger.TG.LogAttrs(tghelpers.BuildContext(c), slog.LevelError, "panic recovered",
				slog.String("event", "tg.panic"),
				slog.String("status", "fail"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
