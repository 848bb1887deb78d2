package scoring

import "strings"

// normalize lower-cases and collapses whitespace runs so "  Paris "
// and "paris" compare equal. Punctuation is kept: acceptable answers
// are authored with the punctuation that counts.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchesAny reports whether the response matches one of the
// acceptable alternatives after normalization. The first match wins.
func matchesAny(response string, accepted []string) bool {
	norm := normalize(response)
	if norm == "" {
		return false
	}
	for _, a := range accepted {
		if norm == normalize(a) {
			return true
		}
	}
	return false
}
