// Package state stores per-user conversation sessions for Telegram bots.
// It is intentionally domain-agnostic: a session is a named step plus the
// free-text answers collected so far, and the package never interprets them.
package state
