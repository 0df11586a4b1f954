package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies the replies used when an update reaches no
// registered handler or is turned away by the middleware chain.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
	// RateLimited answers updates dropped by the rate limiter.
	RateLimited() tele.HandlerFunc
	// AdminRejected answers admin-only commands sent by regular users.
	AdminRejected() tele.HandlerFunc
}
