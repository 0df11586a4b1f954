package bot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hrbot/app/flow"
	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/moderation"
	"github.com/m3rciful/hrbot/app/report"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/callbacks"
	"github.com/m3rciful/hrbot/core/telegram/format"
	tghelpers "github.com/m3rciful/hrbot/core/telegram/helpers"
)

const trackLimit = 10

// output is a reply ready for the transport.
type output struct {
	Text   string
	Markup *gateway.Markup
}

func fromReply(r flow.Reply) output {
	return output{Text: r.Text, Markup: markupFor(r)}
}

type handlers struct {
	engine   *flow.Engine
	mod      *moderation.Dispatcher
	ledger   requests.Ledger
	schedule schedule.Store
	users    users.Registry
	gw       gateway.Gateway
	admins   flow.Admins

	pick func(n int) int
	now  func() time.Time
}

// touch records the user for broadcasts; failures only cost a recipient.
func (h *handlers) touch(ctx context.Context, userID int64) {
	if err := h.users.Add(ctx, userID); err != nil {
		logger.Warn(ctx, "app", "users.add.failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (h *handlers) runFlow(ctx context.Context, in flow.Input) (output, bool, error) {
	r, err := h.engine.Handle(ctx, in)
	if errors.Is(err, flow.ErrNoSession) {
		return output{}, false, nil
	}
	if err != nil {
		return output{}, true, err
	}
	return fromReply(r), true, nil
}

// onText answers a decoded message. handled is false for free text outside
// any form so the caller can fall back.
func (h *handlers) onText(ctx context.Context, userID int64, cmd Command) (out output, handled bool, err error) {
	switch cmd.Kind {
	case CmdStartExcuse:
		return h.runFlow(ctx, flow.Input{Kind: flow.InputStart, UserID: userID, Flow: flow.FlowExcuse})
	case CmdStartLeave:
		return h.runFlow(ctx, flow.Input{Kind: flow.InputStart, UserID: userID, Flow: flow.FlowLeave})
	case CmdCancel:
		return h.runFlow(ctx, flow.Input{Kind: flow.InputCancel, UserID: userID})
	case CmdAnswer:
		return h.runFlow(ctx, flow.Input{Kind: flow.InputAnswer, UserID: userID, Text: cmd.Text})
	}

	h.touch(ctx, userID)
	switch cmd.Kind {
	case CmdTrack:
		out, err = h.track(ctx, userID)
		return out, true, err
	case CmdReferences:
		return output{Text: textReferences, Markup: referencesMenu()}, true, nil
	case CmdPhrase:
		p := motivationalPhrases[h.pick(len(motivationalPhrases))]
		return output{Text: phraseText(p), Markup: mainMenu()}, true, nil
	case CmdDhikr:
		return output{Text: dhikrText(), Markup: mainMenu()}, true, nil
	case CmdInquiries:
		return output{Text: textInquiries, Markup: inquiriesMenu()}, true, nil
	}
	return output{}, false, nil
}

func (h *handlers) track(ctx context.Context, userID int64) (output, error) {
	list, err := h.ledger.ListBySubmitter(ctx, userID, trackLimit)
	if err != nil {
		return output{}, err
	}
	if len(list) == 0 {
		return output{Text: textTrackEmpty, Markup: mainMenu()}, nil
	}
	var b strings.Builder
	b.WriteString(format.Bold(textTrackHeader))
	for _, r := range list {
		b.WriteString(format.Sprintf("\n#%d | %s | %s | %s",
			r.ID, r.Kind.Label(), r.Status.Label(), r.CreatedAt.Format("2006-01-02")))
	}
	return output{Text: b.String(), Markup: mainMenu()}, nil
}

func (h *handlers) meetingView(ctx context.Context, m schedule.Meeting) (output, error) {
	date, err := h.schedule.Get(ctx, m)
	if err != nil {
		return output{}, err
	}
	v := meetingViews[m]
	return output{Text: format.Sprintf("%s: %s\n\n%s", v.title, date, v.closing), Markup: backInline()}, nil
}

// HandleText is the conversation entry point for plain messages.
func (h *handlers) HandleText(c tele.Context) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	out, handled, err := h.onText(ctx, c.Sender().ID, Decode(c.Text()))
	if !handled {
		return false, err
	}
	if err != nil {
		_ = tghelpers.SendHTML(c, textFailure, teleMarkup(mainMenu()))
		return true, err
	}
	return true, tghelpers.SendHTML(c, out.Text, teleMarkup(out.Markup))
}

// replyCallback edits the pressed message. Reply keyboards cannot be attached
// by an edit, so they follow in a new message.
func replyCallback(c tele.Context, out output) error {
	if out.Markup == nil || len(out.Markup.Inline) > 0 {
		return tghelpers.EditOrSendHTML(c, out.Text, teleMarkup(out.Markup))
	}
	if err := tghelpers.EditOrSendHTML(c, out.Text); err != nil {
		return err
	}
	return tghelpers.SendHTML(c, textChooseOption, teleMarkup(out.Markup))
}

func (h *handlers) callbackFlow(c tele.Context, in flow.Input) error {
	out, _, err := h.runFlow(tghelpers.BuildContext(c), in)
	if err != nil {
		return err
	}
	return replyCallback(c, out)
}

func (h *handlers) onConfirm(c tele.Context) error {
	f := flow.Flow(callbacks.CallbackPayload(c))
	return h.callbackFlow(c, flow.Input{Kind: flow.InputConfirm, UserID: c.Sender().ID, Flow: f})
}

func (h *handlers) onBack(c tele.Context) error {
	return h.callbackFlow(c, flow.Input{Kind: flow.InputCancel, UserID: c.Sender().ID})
}

func staticReply(text string, markup func() *gateway.Markup) func(tele.Context) error {
	return func(c tele.Context) error {
		return replyCallback(c, output{Text: text, Markup: markup()})
	}
}

func (h *handlers) onMeeting(c tele.Context) error {
	m, err := schedule.ParseMeeting(callbacks.CallbackPayload(c))
	if err != nil {
		return err
	}
	out, err := h.meetingView(tghelpers.BuildContext(c), m)
	if err != nil {
		return err
	}
	return replyCallback(c, out)
}

func (h *handlers) onAdminMeeting(c tele.Context) error {
	if !h.admins.IsAdmin(c.Sender().ID) {
		return callbacks.Answer(c, textNotAdmin)
	}
	m, err := schedule.ParseMeeting(callbacks.CallbackPayload(c))
	if err != nil {
		return err
	}
	return h.callbackFlow(c, flow.Input{
		Kind: flow.InputStart, UserID: c.Sender().ID, Flow: flow.FlowMeetingDate, Meeting: m,
	})
}

func (h *handlers) onAdminBroadcast(c tele.Context) error {
	if !h.admins.IsAdmin(c.Sender().ID) {
		return callbacks.Answer(c, textNotAdmin)
	}
	return h.callbackFlow(c, flow.Input{Kind: flow.InputStart, UserID: c.Sender().ID, Flow: flow.FlowBroadcast})
}

func (h *handlers) onDecision(outcome requests.Outcome) func(tele.Context) error {
	return func(c tele.Context) error {
		id, err := callbacks.PayloadInt64(c)
		if err != nil {
			return callbacks.Answer(c, moderation.TextNotFound)
		}
		dec := moderation.Decision{RequestID: id, Outcome: outcome, AdminID: c.Sender().ID}
		if m := c.Message(); m != nil && m.Chat != nil {
			dec.Source = &gateway.MessageRef{ChatID: m.Chat.ID, MessageID: m.ID}
			dec.SourceText = m.Text
		}
		_, err = h.mod.OnDecision(tghelpers.BuildContext(c), dec)
		switch {
		case errors.Is(err, moderation.ErrUnauthorized):
			return callbacks.Answer(c, moderation.TextUnauthorized)
		case errors.Is(err, requests.ErrNotFound):
			return callbacks.Answer(c, moderation.TextNotFound)
		case errors.Is(err, requests.ErrAlreadyDecided):
			return callbacks.Answer(c, moderation.TextAlreadyDecided)
		}
		return err
	}
}

func (h *handlers) onStart(c tele.Context) error {
	h.touch(tghelpers.BuildContext(c), c.Sender().ID)
	return tghelpers.SendHTML(c, textWelcome, teleMarkup(mainMenu()))
}

func (h *handlers) onAdmin(c tele.Context) error {
	out, err := h.adminPanel(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, out.Text, teleMarkup(out.Markup))
}

// adminPanel shows the audience size and every meeting date above the admin actions.
func (h *handlers) adminPanel(ctx context.Context) (output, error) {
	count, err := h.users.Count(ctx)
	if err != nil {
		return output{}, err
	}
	entries, err := h.schedule.All(ctx)
	if err != nil {
		return output{}, err
	}
	var b strings.Builder
	b.WriteString(textAdminPanel)
	b.WriteString("\n\n")
	b.WriteString(format.Sprintf("عدد المستخدمين: %d", count))
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString(format.Sprintf("• %s: %s", e.Meeting.Label(), e.Value))
	}
	return output{Text: b.String(), Markup: adminMenu()}, nil
}

func (h *handlers) onExport(c tele.Context) error {
	return report.Send(tghelpers.BuildContext(c), h.ledger, h.gw, c.Chat().ID, h.now())
}

func (h *handlers) onMyRequests(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	h.touch(ctx, c.Sender().ID)
	out, err := h.track(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, out.Text, teleMarkup(out.Markup))
}

func randomIndex(n int) int { return rand.Intn(n) }
