package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reOpenFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	reCloseFence = regexp.MustCompile("\\s*```$")
)

// CleanJSONResponse strips a surrounding markdown code fence (``` or ```json,
// any case) from a model answer. Stripping repeats until the text stops
// changing, so CleanJSONResponse(CleanJSONResponse(s)) == CleanJSONResponse(s).
func CleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := reOpenFence.ReplaceAllString(s, "")
		next = reCloseFence.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// Preview returns at most n runes of s, with "..." appended when cut.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
