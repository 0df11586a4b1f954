package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "out_counters"

// outCounters tracks what a handler sent back for the handler summary log.
type outCounters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func (o *outCounters) add(opts []interface{}) {
	o.messages.Add(1)
	if hasKeyboard(opts) {
		o.keyboard.Store(true)
	}
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// countingContext counts successful sends and edits made through the context.
type countingContext struct {
	tele.Context
	out *outCounters
}

func (m countingContext) track(err error, opts []interface{}) error {
	if err == nil {
		m.out.add(opts)
	}
	return err
}

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Reply(what, opts...), opts)
}

func (m countingContext) Edit(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return m.track(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware wraps the context so the handler summary can report
// how many messages were sent and whether any carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		out := &outCounters{}
		c.Set(countersKey, out)
		return next(countingContext{Context: c, out: out})
	}
}

// GetCounters reads the message count and keyboard flag recorded for the update.
func GetCounters(c tele.Context) (int, bool) {
	out, ok := c.Get(countersKey).(*outCounters)
	if !ok {
		return 0, false
	}
	return int(out.messages.Load()), out.keyboard.Load()
}
