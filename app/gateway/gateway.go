// Package gateway is the boundary between the bot core and the chat transport.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// MessageRef addresses a delivered message so it can be edited later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is an inline button. Unique selects the callback handler and Data
// carries its payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Markup is a transport-neutral keyboard. Inline and Reply are mutually
// exclusive; Remove hides a previously shown reply keyboard.
type Markup struct {
	Inline [][]Button
	Reply  [][]string
	Remove bool
}

// Gateway delivers messages to chat recipients.
type Gateway interface {
	Send(ctx context.Context, to int64, text string, markup *Markup) (MessageRef, error)
	// Edit replaces the text of a sent message and drops its inline keyboard.
	Edit(ctx context.Context, ref MessageRef, text string) error
	SendDocument(ctx context.Context, to int64, name, caption string, r io.Reader) error
}

// DeliveryError reports that a specific recipient could not be reached.
type DeliveryError struct {
	Op        string
	Recipient int64
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s to %d: %v", e.Op, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Code is picked up by the handler summary log as err_code.
func (e *DeliveryError) Code() string { return "delivery_failed" }

// Deliver wraps err into a DeliveryError. A nil err stays nil and an err that
// already carries a DeliveryError is returned as is.
func Deliver(op string, to int64, err error) error {
	if err == nil {
		return nil
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &DeliveryError{Op: op, Recipient: to, Err: err}
}
