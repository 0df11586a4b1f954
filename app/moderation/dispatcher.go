// Package moderation routes new requests to administrators and their
// decisions back to the submitter.
package moderation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/m3rciful/hrbot/app/gateway"
	"github.com/m3rciful/hrbot/app/metrics"
	"github.com/m3rciful/hrbot/app/requests"
	"github.com/m3rciful/hrbot/core/logger"
	"github.com/m3rciful/hrbot/core/telegram/format"
)

// Callback keys of the decision buttons; the payload is the request id.
const (
	UniqueApprove = "approve"
	UniqueReject  = "reject"
)

// ErrUnauthorized is returned when a non-admin tries to decide.
var ErrUnauthorized = errors.New("moderation: unauthorized")

// Admins is the administrator allow-list.
type Admins interface {
	IsAdmin(userID int64) bool
}

// Channels are optional chats that receive an informational copy per kind.
type Channels struct {
	Excuse int64
	Leave  int64
}

func (c Channels) forKind(k requests.Kind) int64 {
	if k == requests.KindLeave {
		return c.Leave
	}
	return c.Excuse
}

// Options configures a Dispatcher.
type Options struct {
	Gateway  gateway.Gateway
	Ledger   requests.Ledger
	AdminIDs []int64
	Admins   Admins
	Channels Channels
	// MaxTracked caps how many undecided requests keep their admin copies;
	// 0 selects DefaultMaxTracked.
	MaxTracked int
}

// DefaultMaxTracked bounds the remembered admin copies.
const DefaultMaxTracked = 1000

// Decision is an admin's button press.
type Decision struct {
	RequestID int64
	Outcome   requests.Outcome
	AdminID   int64
	// Source is the message the button was attached to, and SourceText its
	// current text. Both are used when no copies were remembered.
	Source     *gateway.MessageRef
	SourceText string
}

type adminCopy struct {
	ref  gateway.MessageRef
	text string
}

// Dispatcher fans requests out to admins. Sent copies are remembered in memory
// so every admin's copy can be annotated. Copies are dropped once the request is
// decided, and the oldest undecided ones are forgotten past MaxTracked. For a
// forgotten request, and after a restart, only the clicked copy is annotated.
type Dispatcher struct {
	gw       gateway.Gateway
	ledger   requests.Ledger
	adminIDs []int64
	admins   Admins
	channels Channels
	limit    int

	mu     sync.Mutex
	copies map[int64][]adminCopy
	order  []int64
}

func NewDispatcher(opts Options) *Dispatcher {
	limit := opts.MaxTracked
	if limit <= 0 {
		limit = DefaultMaxTracked
	}
	return &Dispatcher{
		gw:       opts.Gateway,
		ledger:   opts.Ledger,
		adminIDs: append([]int64(nil), opts.AdminIDs...),
		admins:   opts.Admins,
		channels: opts.Channels,
		limit:    limit,
		copies:   make(map[int64][]adminCopy),
	}
}

// remember stores the copies of request id, evicting the oldest tracked
// requests beyond the cap. Callers hold d.mu.
func (d *Dispatcher) remember(id int64, sent []adminCopy) {
	if _, ok := d.copies[id]; !ok {
		d.order = append(d.order, id)
	}
	d.copies[id] = append(d.copies[id], sent...)
	for len(d.copies) > d.limit && len(d.order) > 0 {
		delete(d.copies, d.order[0])
		d.order = d.order[1:]
	}
	// decided ids leave stale entries in order
	if len(d.order) > 2*d.limit {
		live := d.order[:0]
		for _, id := range d.order {
			if _, ok := d.copies[id]; ok {
				live = append(live, id)
			}
		}
		d.order = live
	}
}

// DecisionMarkup is the approve/reject keyboard for a request.
func DecisionMarkup(id int64) *gateway.Markup {
	payload := strconv.FormatInt(id, 10)
	return &gateway.Markup{Inline: [][]gateway.Button{{
		{Text: labelApprove, Unique: UniqueApprove, Data: payload},
		{Text: labelReject, Unique: UniqueReject, Data: payload},
	}}}
}

// NotifyAdmins sends the request to every admin and the kind's channel. One
// failing recipient never blocks the others; failures are logged and returned
// aggregated so callers may ignore them.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, r requests.Request) error {
	text := Summary(r)
	markup := DecisionMarkup(r.ID)

	var errs *multierror.Error
	var sent []adminCopy
	for _, id := range d.adminIDs {
		ref, err := d.gw.Send(ctx, id, text, markup)
		if err != nil {
			errs = multierror.Append(errs, gateway.Deliver("notify", id, err))
			metrics.RecordDeliveryFailure("notify")
			logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "notify.failed",
				slog.Int64("request_id", r.ID),
				slog.Int64("admin_id", id),
				slog.String("err", err.Error()),
			)
			continue
		}
		sent = append(sent, adminCopy{ref: ref, text: text})
	}
	if ch := d.channels.forKind(r.Kind); ch != 0 {
		if _, err := d.gw.Send(ctx, ch, text, nil); err != nil {
			errs = multierror.Append(errs, gateway.Deliver("channel", ch, err))
			metrics.RecordDeliveryFailure("channel")
			logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "channel.failed",
				slog.Int64("request_id", r.ID),
				slog.Int64("chat_id", ch),
				slog.String("err", err.Error()),
			)
		}
	}

	if len(sent) > 0 {
		d.mu.Lock()
		d.remember(r.ID, sent)
		d.mu.Unlock()
	}

	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "notify.done",
		slog.Int64("request_id", r.ID),
		slog.String("kind", string(r.Kind)),
		slog.Int("sent", len(sent)),
		slog.Int("failed", len(d.adminIDs)-len(sent)),
	)
	return errs.ErrorOrNil()
}

// OnDecision applies an admin decision. Authorization is checked before anything
// else; then the ledger is updated, the submitter told, and admin copies annotated.
// Delivery problems after the ledger update are logged, not returned.
func (d *Dispatcher) OnDecision(ctx context.Context, dec Decision) (requests.Request, error) {
	if d.admins == nil || !d.admins.IsAdmin(dec.AdminID) {
		metrics.RecordDecision("unauthorized")
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "decision.denied",
			slog.String("status", "denied"),
			slog.Int64("request_id", dec.RequestID),
			slog.Int64("user_id", dec.AdminID),
			slog.String("outcome", "unauthorized"),
		)
		return requests.Request{}, ErrUnauthorized
	}

	r, err := d.ledger.Decide(ctx, dec.RequestID, dec.Outcome, dec.AdminID)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrNotFound):
			metrics.RecordDecision("not_found")
		case errors.Is(err, requests.ErrAlreadyDecided):
			metrics.RecordDecision("already_decided")
		}
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "decision.rejected",
			slog.Int64("request_id", dec.RequestID),
			slog.Int64("admin_id", dec.AdminID),
			slog.String("err", err.Error()),
		)
		return r, err
	}
	metrics.RecordDecision(string(dec.Outcome))

	if _, err := d.gw.Send(ctx, r.SubmitterID, submitterNotice(r), nil); err != nil {
		metrics.RecordDeliveryFailure("decision")
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "submitter.notify.failed",
			slog.Int64("request_id", r.ID),
			slog.Int64("submitter_id", r.SubmitterID),
			slog.String("err", gateway.Deliver("decision", r.SubmitterID, err).Error()),
		)
	}

	annotated := d.annotateCopies(ctx, r, dec)
	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "decision.applied",
		slog.Int64("request_id", r.ID),
		slog.String("outcome", string(r.Status)),
		slog.Int64("admin_id", dec.AdminID),
		slog.Int64("submitter_id", r.SubmitterID),
		slog.Int("count", annotated),
	)
	return r, nil
}

func (d *Dispatcher) annotateCopies(ctx context.Context, r requests.Request, dec Decision) int {
	d.mu.Lock()
	copies := d.copies[r.ID]
	delete(d.copies, r.ID)
	d.mu.Unlock()

	if len(copies) == 0 && dec.Source != nil {
		// message text comes back from Telegram without markup
		text := format.EscapeHTML(dec.SourceText)
		if text == "" {
			text = Summary(r)
		}
		copies = []adminCopy{{ref: *dec.Source, text: text}}
	}
	done := 0
	for _, c := range copies {
		if err := d.gw.Edit(ctx, c.ref, annotate(c.text, r.Status)); err != nil {
			metrics.RecordDeliveryFailure("annotate")
			logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "annotate.failed",
				slog.Int64("request_id", r.ID),
				slog.Int64("chat_id", c.ref.ChatID),
				slog.String("err", err.Error()),
			)
			continue
		}
		done++
	}
	return done
}
