package requests

import "testing"

func TestLeaveDetailsRoundTripKeepsMalformedDates(t *testing.T) {
	in := LeaveDetails{Duration: "3", Start: "2024-01-01", End: "بعد العيد"}
	got := ParseLeaveDetails(in.Format())
	if got != in {
		t.Fatalf("got %+v, want %+v", got, in)
	}
	if ParseLeaveDetails("random text") != (LeaveDetails{}) {
		t.Fatal("unrelated text must parse to empty details")
	}
}
