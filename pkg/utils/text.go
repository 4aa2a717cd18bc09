// Package utils provides shared text and logging helpers.
package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s cut to maxLen runes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// OneLine collapses all whitespace runs in s, including newlines, into single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
