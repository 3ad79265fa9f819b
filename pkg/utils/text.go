// Package utils provides shared utilities for text, math, and logging.
package utils

// Truncate returns s cut to at most maxChars characters, with "..." appended
// if anything was cut. The cut lands on a rune boundary so analysis text that
// is not plain ASCII stays valid UTF-8. If maxChars is 0 or negative, returns
// s unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "..."
}
