// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/m3rciful/hrbot/app/gateway"
)

// ErrBlocked is returned for recipients listed in Recorder.Fail.
var ErrBlocked = errors.New("gatewaytest: recipient blocked")

// Sent is one delivered message.
type Sent struct {
	Ref    gateway.MessageRef
	Text   string
	Markup *gateway.Markup
}

// Edited is one applied edit.
type Edited struct {
	Ref  gateway.MessageRef
	Text string
}

// Document is one uploaded file.
type Document struct {
	To      int64
	Name    string
	Caption string
	Body    []byte
}

// Recorder records every call. Recipients in Fail get ErrBlocked.
type Recorder struct {
	mu       sync.Mutex
	nextID   int
	Fail     map[int64]bool
	FailEdit bool
	Sent     []Sent
	Edits    []Edited
	Docs     []Document
}

// New returns a Recorder failing for the given recipients.
func New(fail ...int64) *Recorder {
	r := &Recorder{Fail: make(map[int64]bool)}
	for _, id := range fail {
		r.Fail[id] = true
	}
	return r
}

func (r *Recorder) Send(_ context.Context, to int64, text string, markup *gateway.Markup) (gateway.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[to] {
		return gateway.MessageRef{}, gateway.Deliver("send", to, ErrBlocked)
	}
	r.nextID++
	ref := gateway.MessageRef{ChatID: to, MessageID: r.nextID}
	r.Sent = append(r.Sent, Sent{Ref: ref, Text: text, Markup: markup})
	return ref, nil
}

func (r *Recorder) Edit(_ context.Context, ref gateway.MessageRef, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailEdit || r.Fail[ref.ChatID] {
		return gateway.Deliver("edit", ref.ChatID, ErrBlocked)
	}
	r.Edits = append(r.Edits, Edited{Ref: ref, Text: text})
	return nil
}

func (r *Recorder) SendDocument(_ context.Context, to int64, name, caption string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail[to] {
		return gateway.Deliver("document", to, ErrBlocked)
	}
	r.Docs = append(r.Docs, Document{To: to, Name: name, Caption: caption, Body: data})
	return nil
}

// SentTo returns the messages delivered to a recipient in order.
func (r *Recorder) SentTo(to int64) []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sent
	for _, s := range r.Sent {
		if s.Ref.ChatID == to {
			out = append(out, s)
		}
	}
	return out
}

// EditsSnapshot returns a copy of the applied edits.
func (r *Recorder) EditsSnapshot() []Edited {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Edited(nil), r.Edits...)
}

// SentCount returns the number of delivered messages.
func (r *Recorder) SentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Sent)
}
