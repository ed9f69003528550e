package tour

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NoCountry is the sentinel the clients send when the country is unknown.
const NoCountry = "none"

// NormalizeKey turns a free-form city/country pair into a canonical cache key.
// Only the part of city before the first comma is used. The result contains
// only [a-z0-9_] and is empty when the city part has no usable characters
// (blank, or written entirely in a non-Latin script).
func NormalizeKey(city, country string) string {
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = city[:i]
	}
	key := strip(strings.ToLower(strings.TrimSpace(city)))
	if key == "" {
		return ""
	}

	country = strings.ToLower(strings.TrimSpace(country))
	if country != NoCountry {
		if c := strip(country); c != "" {
			key += "_" + c
		}
	}
	return key
}

// strip removes diacritics and anything outside [a-z0-9_].
func strip(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
