package gateway

import (
	"errors"
	"testing"
)

func TestDeliverWrapsAndUnwraps(t *testing.T) {
	if Deliver("send", 1, nil) != nil {
		t.Fatal("nil error must stay nil")
	}
	base := errors.New("blocked by user")
	err := Deliver("send", 42, base)

	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %T", err)
	}
	if de.Recipient != 42 || !errors.Is(err, base) {
		t.Fatalf("unexpected error: %+v", de)
	}
	if de.Error() != "send to 42: blocked by user" {
		t.Fatalf("message = %q", de.Error())
	}
}

func TestDeliverDoesNotWrapTwice(t *testing.T) {
	inner := Deliver("send", 5, errors.New("chat not found"))
	err := Deliver("notify", 5, inner)
	if err != inner {
		t.Fatalf("expected the existing DeliveryError back, got %v", err)
	}
	if err.Error() != "send to 5: chat not found" {
		t.Fatalf("message = %q", err.Error())
	}
}
