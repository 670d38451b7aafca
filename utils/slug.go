package utils

import "strings"

// Slugify derives the URL identifier for a display name: lower-cased,
// surrounding whitespace trimmed, every run of whitespace collapsed to a
// single hyphen. Deterministic, so stored slugs and recomputed ones agree.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
