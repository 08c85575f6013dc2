package profile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// normalizeQuery folds a string for matching: lowercase, no diacritics.
func normalizeQuery(s string) string {
	return strings.ToLower(removeDiacritics(s))
}

// Filter returns the profiles whose id, name or department matches the
// query. Matching is case- and diacritic-insensitive; an empty query
// returns the input unchanged.
func Filter(profiles []Profile, query string) []Profile {
	q := normalizeQuery(strings.TrimSpace(query))
	if q == "" {
		return profiles
	}

	var out []Profile
	for i := range profiles {
		p := &profiles[i]
		if strings.Contains(normalizeQuery(p.FullName), q) ||
			strings.Contains(normalizeQuery(p.Department), q) ||
			strings.Contains(strings.ToLower(p.ID), q) {
			out = append(out, *p)
		}
	}
	return out
}
