package gfx

import "strings"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeText replaces the five characters the SVG output contract
// forbids from appearing raw inside label text: & < > " '.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
