package shared

import "strings"

// NormalizeText collapses runs of whitespace to single spaces and trims the result.
//
// Total function: empty input maps to empty output, never fails.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey builds the canonical comparison key for an (author, title) pair.
//
// Both fields are whitespace-normalized and case-folded, then joined with "|".
// Every lookup that compares two books uses this key, so two records are the
// same book exactly when their keys are equal.
func NormalizeKey(author, title string) string {
	return strings.ToLower(NormalizeText(author)) + "|" + strings.ToLower(NormalizeText(title))
}
