package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/hrbot/app/broadcast"
	"github.com/m3rciful/hrbot/app/metrics"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/app/schedule"
	"github.com/m3rciful/hrbot/app/users"
	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/state"
)

// ErrNoSession is returned for an answer from a user who has no form open.
var ErrNoSession = errors.New("flow: no active session")

// InputKind tags the variant carried by Input.
type InputKind int

const (
	InputStart InputKind = iota + 1
	InputAnswer
	InputConfirm
	InputCancel
)

func (k InputKind) String() string {
	switch k {
	case InputStart:
		return "start"
	case InputAnswer:
		return "answer"
	case InputConfirm:
		return "confirm"
	case InputCancel:
		return "cancel"
	}
	return "unknown"
}

// Input is one decoded user event.
type Input struct {
	Kind   InputKind
	UserID int64
	// Text is the answer for InputAnswer.
	Text string
	// Flow selects the form for InputStart; for InputConfirm it must match the
	// open form when set.
	Flow Flow
	// Meeting is required when starting FlowMeetingDate.
	Meeting schedule.Meeting
}

// Keyboard tags the markup the transport should attach to a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMain
	KeyboardBack
	KeyboardActivity
	KeyboardConfirm
	KeyboardBackInline
)

// Reply is what the user sees next.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Flow is set on confirm keyboards so the button can name its form.
	Flow Flow
}

// Notifier hands a new request to the moderators.
type Notifier interface {
	NotifyAdmins(ctx context.Context, r requests.Request) error
}

// Broadcaster sends an admin message to every known user.
type Broadcaster interface {
	Send(ctx context.Context, text string) (broadcast.Result, error)
}

// Admins is the administrator allow-list.
type Admins interface {
	IsAdmin(userID int64) bool
}

// Deps wires the engine to its stores and collaborators.
type Deps struct {
	Sessions    state.Store
	Ledger      requests.Ledger
	Users       users.Registry
	Schedule    schedule.Store
	Notifier    Notifier
	Broadcaster Broadcaster
	Admins      Admins
}

// Engine advances form sessions.
type Engine struct {
	d     Deps
	locks *userLocks
}

func New(d Deps) *Engine {
	return &Engine{d: d, locks: newUserLocks()}
}

// Handle processes one input for its user. Inputs of the same user are
// processed one at a time. A non-nil error means a store failed; user mistakes
// are answered with a Reply instead.
func (e *Engine) Handle(ctx context.Context, in Input) (Reply, error) {
	release := e.locks.Lock(in.UserID)
	defer release()

	if err := e.d.Users.Add(ctx, in.UserID); err != nil {
		logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "users.add.failed",
			slog.Int64("user_id", in.UserID),
			slog.String("err", err.Error()),
		)
	}

	switch in.Kind {
	case InputStart:
		return e.start(ctx, in)
	case InputAnswer:
		return e.answer(ctx, in)
	case InputConfirm:
		return e.confirm(ctx, in)
	case InputCancel:
		return e.cancel(ctx, in)
	}
	return Reply{}, fmt.Errorf("flow: unsupported input kind %d", in.Kind)
}

func (e *Engine) start(ctx context.Context, in Input) (Reply, error) {
	first, ok := firstStep[in.Flow]
	if !ok {
		return Reply{}, fmt.Errorf("flow: unknown flow %q", in.Flow)
	}
	if in.Flow.Admin() && !e.isAdmin(in.UserID) {
		logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "flow.start.denied",
			slog.String("status", "denied"),
			slog.String("flow", string(in.Flow)),
			slog.Int64("user_id", in.UserID),
			slog.String("outcome", "unauthorized"),
		)
		return Reply{Text: TextNotAdmin}, nil
	}

	if prev, open, err := e.d.Sessions.Get(ctx, in.UserID); err != nil {
		return Reply{}, fmt.Errorf("flow: load session: %w", err)
	} else if open {
		prevFlow, _ := FlowOf(prev.State)
		logger.SVCFlow.LogAttrs(ctx, slog.LevelInfo, "flow.discarded",
			slog.String("flow", string(prevFlow)),
			slog.String("step", string(prev.State)),
			slog.Int64("user_id", in.UserID),
		)
	}

	sess := state.NewSession(in.UserID, first)
	if in.Flow == FlowMeetingDate {
		if _, err := schedule.ParseMeeting(string(in.Meeting)); err != nil {
			return Reply{}, err
		}
		sess.Fields[fieldMeeting] = string(in.Meeting)
	}
	if err := e.d.Sessions.Put(ctx, sess); err != nil {
		return Reply{}, fmt.Errorf("flow: save session: %w", err)
	}
	metrics.RecordFlowTransition(string(in.Flow), "start")
	logger.SVCFlow.LogAttrs(ctx, slog.LevelInfo, "flow.started",
		slog.String("flow", string(in.Flow)),
		slog.String("step", string(first)),
		slog.Int64("user_id", in.UserID),
	)
	return prompt(sess), nil
}

func (e *Engine) answer(ctx context.Context, in Input) (Reply, error) {
	sess, ok, err := e.d.Sessions.Get(ctx, in.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("flow: load session: %w", err)
	}
	if !ok {
		return Reply{}, ErrNoSession
	}
	if isConfirmStep(sess.State) {
		r := prompt(sess)
		r.Text = TextUseButtons
		r.Flow, _ = FlowOf(sess.State)
		return r, nil
	}

	event := eventAnswer
	if sess.State == ExcuseActivity {
		event = eventPickActivity
		if strings.TrimSpace(in.Text) == ActivityOther {
			event = eventPickOther
		}
	}
	next, err := advance(ctx, sess.State, event)
	if err != nil {
		// a step outside the table means the stored session is unusable
		return e.restart(ctx, sess, err)
	}
	sess = sess.With(stepField[sess.State], in.Text, next)

	if next == StateIdle {
		return e.complete(ctx, sess)
	}
	if err := e.d.Sessions.Put(ctx, sess); err != nil {
		return Reply{}, fmt.Errorf("flow: save session: %w", err)
	}
	r := prompt(sess)
	if isConfirmStep(next) {
		r.Flow, _ = FlowOf(next)
	}
	return r, nil
}

// complete finishes the admin forms, which end on their single answer.
func (e *Engine) complete(ctx context.Context, sess state.Session) (Reply, error) {
	if err := e.d.Sessions.Delete(ctx, sess.UserID); err != nil {
		return Reply{}, fmt.Errorf("flow: clear session: %w", err)
	}
	if !e.isAdmin(sess.UserID) {
		return Reply{Text: TextNotAdmin, Keyboard: KeyboardMain}, nil
	}

	switch {
	case sess.Fields[fieldMeeting] != "":
		m := schedule.Meeting(sess.Fields[fieldMeeting])
		date := sess.Fields[fieldDate]
		if err := e.d.Schedule.Set(ctx, m, date); err != nil {
			return Reply{}, fmt.Errorf("flow: save meeting: %w", err)
		}
		logger.SVCSchedule.LogAttrs(ctx, slog.LevelInfo, "meeting.set",
			slog.String("meeting", string(m)),
			slog.Int64("admin_id", sess.UserID),
		)
		return Reply{Text: meetingSaved(m, date), Keyboard: KeyboardMain}, nil
	default:
		res, err := e.d.Broadcaster.Send(ctx, sess.Fields[fieldMessage])
		switch {
		case broadcast.IsInterrupted(err):
			return Reply{Text: broadcastInterrupted(res.Sent, res.Failed), Keyboard: KeyboardMain}, nil
		case err != nil:
			return Reply{}, fmt.Errorf("flow: broadcast: %w", err)
		}
		return Reply{Text: broadcastDone(res.Sent, res.Failed), Keyboard: KeyboardMain}, nil
	}
}

func (e *Engine) confirm(ctx context.Context, in Input) (Reply, error) {
	sess, ok, err := e.d.Sessions.Get(ctx, in.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("flow: load session: %w", err)
	}
	if !ok {
		return e.restart(ctx, state.Session{UserID: in.UserID}, ErrNoSession)
	}
	open, _ := FlowOf(sess.State)
	if in.Flow != "" && in.Flow != open {
		return e.restart(ctx, sess, fmt.Errorf("confirm for %s while %s is open", in.Flow, open))
	}
	if _, err := advance(ctx, sess.State, eventConfirm); err != nil {
		return e.restart(ctx, sess, err)
	}

	draft, err := buildDraft(sess, open)
	if err != nil {
		return e.restart(ctx, sess, err)
	}
	req, err := e.d.Ledger.Create(ctx, draft)
	if err != nil {
		logger.SVCRequests.LogAttrs(ctx, slog.LevelError, "request.create.failed",
			slog.String("kind", string(draft.Kind)),
			slog.Int64("user_id", in.UserID),
			slog.String("err", err.Error()),
		)
		return Reply{Text: TextStoreFailure, Keyboard: KeyboardConfirm, Flow: open}, nil
	}
	if err := e.d.Sessions.Delete(ctx, in.UserID); err != nil {
		logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "session.clear.failed",
			slog.Int64("user_id", in.UserID),
			slog.String("err", err.Error()),
		)
	}
	metrics.RecordRequestCreated(string(req.Kind))
	logger.SVCRequests.LogAttrs(ctx, slog.LevelInfo, "request.created",
		slog.Int64("request_id", req.ID),
		slog.String("kind", string(req.Kind)),
		slog.Int64("submitter_id", req.SubmitterID),
	)

	if e.d.Notifier != nil {
		if err := e.d.Notifier.NotifyAdmins(ctx, req); err != nil {
			logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "notify.partial",
				slog.Int64("request_id", req.ID),
				slog.String("err", err.Error()),
			)
		}
	}
	return Reply{Text: submitted(req.SubmitterName, req.ID)}, nil
}

func (e *Engine) cancel(ctx context.Context, in Input) (Reply, error) {
	sess, ok, err := e.d.Sessions.Get(ctx, in.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("flow: load session: %w", err)
	}
	if ok {
		if _, err := advance(ctx, sess.State, eventCancel); err != nil {
			logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "flow.cancel.unknown_step",
				slog.String("step", string(sess.State)),
				slog.String("err", err.Error()),
			)
		}
		if err := e.d.Sessions.Delete(ctx, in.UserID); err != nil {
			return Reply{}, fmt.Errorf("flow: clear session: %w", err)
		}
		f, _ := FlowOf(sess.State)
		logger.SVCFlow.LogAttrs(ctx, slog.LevelInfo, "flow.cancelled",
			slog.String("status", "cancelled"),
			slog.String("flow", string(f)),
			slog.String("step", string(sess.State)),
			slog.Int64("user_id", in.UserID),
		)
	}
	return Reply{Text: TextBackToMain, Keyboard: KeyboardMain}, nil
}

// restart is the fallback for sessions that cannot continue: the session is
// dropped and the user is sent back to the menu.
func (e *Engine) restart(ctx context.Context, sess state.Session, cause error) (Reply, error) {
	if err := e.d.Sessions.Delete(ctx, sess.UserID); err != nil {
		return Reply{}, fmt.Errorf("flow: clear session: %w", err)
	}
	logger.SVCFlow.LogAttrs(ctx, slog.LevelWarn, "flow.restart",
		slog.String("step", string(sess.State)),
		slog.Int64("user_id", sess.UserID),
		slog.String("err", cause.Error()),
	)
	return Reply{Text: TextRestart, Keyboard: KeyboardMain}, nil
}

func (e *Engine) isAdmin(userID int64) bool {
	return e.d.Admins != nil && e.d.Admins.IsAdmin(userID)
}

func buildDraft(sess state.Session, f Flow) (requests.Draft, error) {
	name, ok := sess.Field(fieldName)
	if !ok || strings.TrimSpace(name) == "" {
		return requests.Draft{}, fmt.Errorf("%w: name missing", requests.ErrInvalidDraft)
	}
	d := requests.Draft{SubmitterID: sess.UserID, SubmitterName: name}
	switch f {
	case FlowExcuse:
		activity, ok := sess.Field(fieldActivity)
		if !ok {
			return requests.Draft{}, fmt.Errorf("%w: activity missing", requests.ErrInvalidDraft)
		}
		d.Kind = requests.KindExcuse
		d.Details = activity
		d.Reason = requests.Unspecified
		if reason, ok := sess.Field(fieldReason); ok {
			d.Reason = reason
		}
	case FlowLeave:
		for _, k := range []string{fieldReason, fieldDuration, fieldStart, fieldEnd} {
			if _, ok := sess.Field(k); !ok {
				return requests.Draft{}, fmt.Errorf("%w: %s missing", requests.ErrInvalidDraft, k)
			}
		}
		d.Kind = requests.KindLeave
		d.Reason = sess.Fields[fieldReason]
		d.Details = leaveDetails(sess).Format()
	default:
		return requests.Draft{}, fmt.Errorf("%w: flow %q has no request", requests.ErrInvalidDraft, f)
	}
	return d, nil
}
