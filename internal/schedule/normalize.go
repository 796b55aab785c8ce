package schedule

import "strings"

// Normalize collapses every run of whitespace (spaces, tabs, newlines,
// NBSP included via unicode.IsSpace) to a single space and trims the ends.
// Total function: empty input yields empty output.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
