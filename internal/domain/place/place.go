// Package place gates location candidates before they reach the geocoder.
// Location extractors over research abstracts surface plenty of ORG-shaped
// noise (methods, acronyms, frameworks); each geocoding call is rate limited
// and externally billed, so implausible names are rejected up front.
package place

import (
	"strings"
	"unicode/utf8"
)

// Stoplist is a set of lowercase substrings that mark a candidate as
// non-geographic. Matching is substring, not whole-word: "SPSS analysis"
// and "spss" both reject.
type Stoplist []string

// DefaultStoplist covers the acronyms and method vocabulary that the
// extractors most often misread as places in this corpus.
func DefaultStoplist() Stoplist {
	return Stoplist{
		"management",
		"system",
		"model",
		"project",
		"strategy",
		"analysis",
		"spss",
		"tam",
		"tpb",
		"pma",
		"csr",
	}
}

// Plausible reports whether a candidate looks like a real place name:
// non-empty after trimming, longer than two characters, not a short
// all-uppercase acronym, and clear of the stoplist.
func Plausible(name string, stoplist Stoplist) bool {
	name = strings.TrimSpace(name)
	runes := utf8.RuneCountInString(name)
	if runes <= 2 {
		return false
	}
	if runes <= 6 && isAllUpper(name) {
		return false
	}
	lower := strings.ToLower(name)
	for _, stop := range stoplist {
		if strings.Contains(lower, stop) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether every letter in s is uppercase; strings without
// letters do not count as uppercase.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
