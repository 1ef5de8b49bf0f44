// Package utils provides shared utilities for text and logging.
package utils

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// Truncate returns s cut to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// Percent formats a score in [0,1] as a whole percentage, e.g. 0.456 -> "46%".
func Percent(score float64) string {
	return strconv.Itoa(int(math.Round(math.Max(score, 0)*100))) + "%"
}
