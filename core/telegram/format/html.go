package format

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
// User-supplied answers must pass through it before being interpolated.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Sprintf formats like fmt.Sprintf but escapes every string argument.
func Sprintf(layout string, args ...any) string {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = EscapeHTML(s)
		}
	}
	return fmt.Sprintf(layout, args...)
}
