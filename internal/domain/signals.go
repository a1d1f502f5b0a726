package domain

// QuerySignals carries the advisory evidence extracted from a raw query.
// Signals only ever boost relevance scores, they never exclude documents.
type QuerySignals struct {
	// Temporals is the raw extractor output, first-seen order, deduplicated.
	Temporals []string
	// Locations is the raw location extractor output, first-seen order,
	// deduplicated, before the plausibility gate.
	Locations []string
	// GeoRefs are the geocoded plausible locations, capped upstream.
	GeoRefs []GeoPoint
}

// IsEmpty reports whether no signal of any kind was extracted.
func (s QuerySignals) IsEmpty() bool {
	return len(s.Temporals) == 0 && len(s.Locations) == 0 && len(s.GeoRefs) == 0
}

// DedupeKeepOrder returns values with duplicates removed, preserving the
// first occurrence of each.
func DedupeKeepOrder(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
