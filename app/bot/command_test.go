package bot

import "testing"

func TestDecode(t *testing.T) {
	cases := []struct {
		text string
		want CommandKind
	}{
		{"اعتذار", CmdStartExcuse},
		{" إجازة ", CmdStartLeave},
		{"تتبع طلباتي", CmdTrack},
		{"مراجع الفريق", CmdReferences},
		{"أهدني عبارة", CmdPhrase},
		{"لا تنس ذكر الله", CmdDhikr},
		{"🤍لا تنسَ ذكر الله", CmdDhikr},
		{"استعلامات", CmdInquiries},
		{"رجوع", CmdCancel},
		{"مبادرة", CmdAnswer},
		{"أحمد محمد", CmdAnswer},
		{"", CmdAnswer},
	}
	for _, tc := range cases {
		got := Decode(tc.text)
		if got.Kind != tc.want {
			t.Fatalf("Decode(%q) = %s, want %s", tc.text, got.Kind, tc.want)
		}
		if got.Text != tc.text {
			t.Fatalf("Decode(%q) changed text to %q", tc.text, got.Text)
		}
	}
}
