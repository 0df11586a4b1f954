package bot

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hrbot/app/gateway"
	tgsender "github.com/m3rciful/hrbot/core/telegram/sender"
)

var errNotStarted = errors.New("bot: telegram runtime not started")

// teleGateway delivers through telebot. The bot and the retrying sender are
// bound when the runtime starts; calls made earlier fail with errNotStarted.
type teleGateway struct {
	bot    atomic.Pointer[tele.Bot]
	sender atomic.Pointer[tgsender.Dispatcher]
}

var _ gateway.Gateway = (*teleGateway)(nil)

func (g *teleGateway) bind(b *tele.Bot, d *tgsender.Dispatcher) {
	g.bot.Store(b)
	g.sender.Store(d)
}

func (g *teleGateway) do(ctx context.Context, action, endpoint string, run func(b *tele.Bot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := g.bot.Load()
	if b == nil {
		return errNotStarted
	}
	call := func() error { return run(b) }
	if d := g.sender.Load(); d != nil {
		return d.Do(ctx, action, endpoint, call)
	}
	return call()
}

func (g *teleGateway) Send(ctx context.Context, to int64, text string, markup *gateway.Markup) (gateway.MessageRef, error) {
	var ref gateway.MessageRef
	err := g.do(ctx, "gateway.send", "sendMessage", func(b *tele.Bot) error {
		msg, err := b.Send(tele.ChatID(to), text, &tele.SendOptions{
			ParseMode:   tele.ModeHTML,
			ReplyMarkup: teleMarkup(markup),
		})
		if err != nil {
			return err
		}
		ref = gateway.MessageRef{ChatID: to, MessageID: msg.ID}
		if msg.Chat != nil {
			ref.ChatID = msg.Chat.ID
		}
		return nil
	})
	if err != nil {
		return gateway.MessageRef{}, gateway.Deliver("send", to, err)
	}
	return ref, nil
}

func (g *teleGateway) Edit(ctx context.Context, ref gateway.MessageRef, text string) error {
	err := g.do(ctx, "gateway.edit", "editMessageText", func(b *tele.Bot) error {
		msg := tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
		// no reply markup: Telegram drops the inline keyboard
		_, err := b.Edit(msg, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
		return err
	})
	return gateway.Deliver("edit", ref.ChatID, err)
}

func (g *teleGateway) SendDocument(ctx context.Context, to int64, name, caption string, r io.Reader) error {
	// a reader can be consumed once, so uploads bypass the retrying sender
	if err := ctx.Err(); err != nil {
		return gateway.Deliver("document", to, err)
	}
	b := g.bot.Load()
	if b == nil {
		return gateway.Deliver("document", to, errNotStarted)
	}
	doc := &tele.Document{File: tele.FromReader(r), FileName: name, Caption: caption}
	_, err := b.Send(tele.ChatID(to), doc)
	return gateway.Deliver("document", to, err)
}
