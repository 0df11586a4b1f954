package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hrbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/hrbot/core/telegram/helpers"
	"github.com/m3rciful/hrbot/core/telegram/ui"
)

const textStaleButton = "هذا الزر لم يعد صالحاً، يرجى البدء من القائمة الرئيسية."

type fallbacks struct{}

var _ ui.FallbackProvider = fallbacks{}

func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, textUnknown, teleMarkup(mainMenu()))
	}
}

func (fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, textUnknownDoc, teleMarkup(mainMenu()))
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return callbacks.Answer(c, textStaleButton)
	}
}

// RateLimited answers throttled button presses; throttled messages are dropped.
func (fallbacks) RateLimited() tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() != nil {
			return callbacks.Answer(c, textRateLimited)
		}
		return nil
	}
}

func (fallbacks) AdminRejected() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, textNotAdmin)
	}
}
