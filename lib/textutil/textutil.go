package textutil

import (
	"strings"
)

// Normalize collapses every run of whitespace into a single space and trims
// both ends, so a rendered table cell and a PDF text run compare equal.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeKey is Normalize but case-insensitive, used for lookups
// (agency names, sheet names) rather than for verdicts.
func NormalizeKey(text string) string {
	return strings.ToLower(Normalize(text))
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeKey(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeKey(m)) {
			return true
		}
	}
	return false
}
