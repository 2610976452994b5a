package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName converts arbitrary header or dataset text into a lowercase
// ASCII identifier suitable for SQL schemas:
//
//  1. lowercase and trim
//  2. strip accents (NFD -> remove Mn -> NFC)
//  3. keep [a-z0-9_]; every other character becomes an underscore
//  4. collapse repeated underscores and trim leading/trailing ones
//  5. fall back to "col" when nothing survives
//
// The function is pure and deterministic: identical inputs always map to
// identical identifiers. Distinct inputs can still collide (e.g. "Wins!" and
// "Wins?"); the importer tracks normalized names and refuses to merge two
// different sources into one table silently.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose, remove nonspacing marks (accents), recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
