package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/hrbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentWindow is how many update ids are remembered for receipt deduplication.
const recentWindow = 256

// updateRing remembers the last recentWindow update ids.
type updateRing struct {
	mu   sync.Mutex
	ids  [recentWindow]int
	set  map[int]struct{}
	next int
	full bool
}

var recent = &updateRing{set: make(map[int]struct{}, recentWindow)}

// seen records id and reports whether it was already recorded.
func (r *updateRing) seen(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.set[id]; ok {
		return true
	}
	if r.full {
		delete(r.set, r.ids[r.next])
	}
	r.ids[r.next] = id
	r.set[id] = struct{}{}
	r.next = (r.next + 1) % recentWindow
	if r.next == 0 {
		r.full = true
	}
	return false
}

// LoggerMiddleware sets the rid for the update and logs one sampled debug
// receipt line per update even when it is applied on several branches.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		if _, ok := c.Get("rid").(string); !ok {
			c.Set("rid", logger.BuildRID(upd.ID, chatID, userID))
			c.Set("update_start", time.Now())
		}
		ctx := tghelpers.BuildContext(c)

		if !logger.ShouldSampleDebug() || recent.seen(upd.ID) {
			return next(c)
		}

		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("rid", logger.RIDFrom(ctx)),
			slog.Int("update_id", upd.ID),
		}
		if chatID != 0 {
			attrs = append(attrs,
				slog.Int64("chat_id", chatID),
				slog.String("chat_type", string(chat.Type)),
			)
		}
		if userID != 0 {
			attrs = append(attrs, slog.Int64("user_id", userID))
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}

		switch {
		case upd.Callback != nil:
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			if key != "" {
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			}
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
			}
		case upd.Message != nil && upd.Message.Document != nil:
			attrs = append(attrs, slog.String("document", logger.SanitizeLimit(upd.Message.Document.FileName, 128)))
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}
