package helpers

import (
	"context"
	"testing"

	"github.com/m3rciful/hrbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

func TestBuildContextCarriesUpdateMeta(t *testing.T) {
	c := tele.NewContext(nil, tele.Update{
		ID:      11,
		Message: &tele.Message{Sender: &tele.User{ID: 5}, Chat: &tele.Chat{ID: 9}},
	})
	ctx := BuildContext(c)
	if logger.UserIDFrom(ctx) != 5 || logger.ChatIDFrom(ctx) != 9 || logger.UpdateIDFrom(ctx) != 11 {
		t.Fatalf("unexpected meta user=%d chat=%d update=%d",
			logger.UserIDFrom(ctx), logger.ChatIDFrom(ctx), logger.UpdateIDFrom(ctx))
	}
	if logger.RIDFrom(ctx) == "" {
		t.Fatal("rid missing")
	}
	if again := BuildContext(c); again != ctx {
		t.Fatal("context should be cached on the update")
	}
	if got := logger.HandlerFrom(WithHandler(c, "track")); got != "track" {
		t.Fatalf("handler = %q", got)
	}
}

func TestBuildContextFollowsBase(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	SetBaseContext(parent)
	defer SetBaseContext(nil)

	ctx := BuildContext(tele.NewContext(nil, tele.Update{ID: 1}))
	cancel()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("per-update context must be cancelled with the base context")
	}
}
