package dsl

import "strings"

// Suggest fetch sizing: overfetch to survive the caller-side dedupe, within
// fixed bounds.
const (
	suggestOverfetch = 8
	minFetchSize     = 25
	maxFetchSize     = 80

	suggestTerminateAfter = 2000
	prefixClauseBoost     = 3.0
)

var suggestFields = []string{"title.en^4", "title.ar^4", "author^2"}

// FetchSize returns the candidate count to request for a suggestion limit.
func FetchSize(limit int) int {
	size := limit * suggestOverfetch
	if size < minFetchSize {
		return minFetchSize
	}
	if size > maxFetchSize {
		return maxFetchSize
	}
	return size
}

// Suggest builds the typeahead body: a boosted phrase_prefix clause for
// clean prefix matches and a fuzzy fallback for typos, at least one of
// which must match. The body is capped for interactive latency: no total
// hit counting and bounded per-shard evaluation.
func Suggest(prefix string, fetchSize int) map[string]any {
	prefix = strings.TrimSpace(prefix)

	return map[string]any{
		"size":             fetchSize,
		"track_total_hits": false,
		"terminate_after":  suggestTerminateAfter,
		"_source":          []string{"title", "author"},
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":  prefix,
							"type":   "phrase_prefix",
							"fields": suggestFields,
							"boost":  prefixClauseBoost,
						},
					},
					map[string]any{
						"multi_match": map[string]any{
							"query":          prefix,
							"fields":         suggestFields,
							"operator":       "and",
							"fuzziness":      "AUTO",
							"prefix_length":  2,
							"max_expansions": 50,
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}
}
