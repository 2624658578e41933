// Package text holds small shared text helpers.
package text

import (
	stdhtml "html"
	"regexp"
	"strings"
)

var htmlTagRe = regexp.MustCompile(`(?is)<[^>]*>`)

// Preview trims s and returns at most maxRunes runes, appending an ellipsis
// when truncated. Used for bounded logging of respondent content.
func Preview(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "…"
}

// Clean normalizes a possibly-HTML string into single-line plain text.
// Transport payloads can carry markup; the start-keyword match runs on the
// cleaned form so formatting never hides the trigger. Answers themselves are
// recorded verbatim.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = stdhtml.UnescapeString(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}
