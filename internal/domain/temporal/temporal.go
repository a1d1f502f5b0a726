// Package temporal holds the year-signal arithmetic shared by the query and
// ingestion pipelines. Extractors emit free-form temporal phrases; only the
// year-like subset is safe to match against the indexed keyword field, and
// compact ranges are expanded so "2019-2021" boosts each year it covers.
package temporal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/qanat/internal/domain"
)

// maxRangeSpan bounds range expansion; anything wider passes through verbatim.
const maxRangeSpan = 50

var (
	yearLike      = regexp.MustCompile(`(19|20)\d{2}`)
	yearRangeFull = regexp.MustCompile(`^((19|20)\d{2})\s*-\s*((19|20)\d{2})$`)

	yearRangeToken = regexp.MustCompile(`\b(19|20)\d{2}\s*[-–]\s*(19|20)\d{2}\b`)
	yearWordRange  = regexp.MustCompile(`(?i)\b(19|20)\d{2}\s+(?:to|until|till)\s+(19|20)\d{2}\b`)
	yearToken      = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	spaces = regexp.MustCompile(`\s+`)
)

// FilterSafe keeps the temporal phrases that can match the indexed year
// vocabulary: trimmed, non-empty, containing a 19xx/20xx year and no percent
// sign. Relative phrases ("last decade") and percentages ("20%") drop here.
func FilterSafe(temporals []string) []string {
	var safe []string
	for _, t := range temporals {
		t = strings.TrimSpace(t)
		if t == "" || strings.Contains(t, "%") {
			continue
		}
		if yearLike.MatchString(t) {
			safe = append(safe, t)
		}
	}
	return safe
}

// ExpandRanges replaces each value that is exactly a YEAR-YEAR range (spaces
// around the hyphen allowed) with the enumerated years. Inverted ranges and
// ranges wider than maxRangeSpan pass through verbatim. The whole output is
// deduplicated preserving first occurrence.
func ExpandRanges(temporals []string) []string {
	var out []string
	for _, t := range temporals {
		trimmed := strings.TrimSpace(t)
		if m := yearRangeFull.FindStringSubmatch(trimmed); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[3])
			if start <= end && end-start <= maxRangeSpan {
				for y := start; y <= end; y++ {
					out = append(out, strconv.Itoa(y))
				}
				continue
			}
		}
		out = append(out, t)
	}
	return domain.DedupeKeepOrder(out)
}

// SafeYears is the boost vocabulary for a set of raw temporal phrases:
// FilterSafe then ExpandRanges.
func SafeYears(temporals []string) []string {
	return ExpandRanges(FilterSafe(temporals))
}

// StripYearTokens removes every year-like token from text: hyphen and en-dash
// ranges first, then worded ranges ("1990 to 1995"), then standalone years,
// so no partial range survives. Whitespace is collapsed afterwards.
func StripYearTokens(text string) string {
	text = yearRangeToken.ReplaceAllString(text, " ")
	text = yearWordRange.ReplaceAllString(text, " ")
	text = yearToken.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}
