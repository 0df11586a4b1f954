package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb              *tele.Callback
		unique, payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Unique: "approve", Data: "42"}, "approve", "42"},
		{&tele.Callback{Data: "\freject|7"}, "reject", "7"},
		{&tele.Callback{Data: "back_to_main"}, "back_to_main", ""},
	}
	for _, tc := range cases {
		u, p := ParseCallbackData(tc.cb)
		if u != tc.unique || p != tc.payload {
			t.Fatalf("ParseCallbackData(%+v) = %q,%q want %q,%q", tc.cb, u, p, tc.unique, tc.payload)
		}
	}
}
