package domain

import "context"

// Extractor pulls a class of entity mentions (temporal expressions or place
// names) out of text in a given language. Implementations return mentions in
// document order, possibly with duplicates; callers dedupe.
//
// Contract: empty text yields ErrEmptyText, a language outside en/ar yields
// ErrUnsupportedLanguage. Both are fatal for the call, never panics.
type Extractor interface {
	Extract(ctx context.Context, text, lang string) ([]string, error)
}

// Geocoder resolves a place name to a geo reference. A failed or empty
// lookup returns (nil, nil); geocoding is advisory and a miss must never
// abort the caller's pipeline.
type Geocoder interface {
	Geocode(ctx context.Context, placeName string) (*GeoReference, error)
}
