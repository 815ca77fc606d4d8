package extract

import (
	"regexp"
	"strings"
)

var (
	crlfRe        = regexp.MustCompile(`\r\n?`)
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	tripleBlank   = regexp.MustCompile(`\n{3,}`)
)

// TightenWhitespace normalises CRLF to LF, drops trailing spaces on every
// line, collapses runs of three-or-more blank lines to two, and trims the
// result. It is idempotent: running it twice equals running it once.
func TightenWhitespace(markdown string) string {
	out := crlfRe.ReplaceAllString(markdown, "\n")
	out = trailingSpace.ReplaceAllString(out, "\n")
	out = tripleBlank.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// CapLength truncates markdown to maxLength runes, appending a truncation
// marker, if maxLength is positive and exceeded. A non-positive maxLength
// disables the cap.
func CapLength(markdown string, maxLength int) string {
	if maxLength <= 0 {
		return markdown
	}
	runes := []rune(markdown)
	if len(runes) <= maxLength {
		return markdown
	}
	return string(runes[:maxLength]) + "\n\n[…truncated]"
}
