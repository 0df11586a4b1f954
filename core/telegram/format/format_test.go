package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<b>Ali & "Sara"</b>`)
	want := `&lt;b&gt;Ali &amp; "Sara"&lt;/b&gt;`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSprintfEscapesOnlyStrings(t *testing.T) {
	got := Sprintf("#%d %s", 7, "a<b")
	if got != "#7 a&lt;b" {
		t.Fatalf("got %q", got)
	}
}

func TestDeref(t *testing.T) {
	v := int64(5)
	if Deref(&v, 0) != 5 || Deref[int64](nil, -1) != -1 {
		t.Fatal("unexpected deref result")
	}
}
