// Package dsl builds the OpenSearch query documents for hybrid retrieval
// and typeahead. Builders emit plain map trees; the index layer owns
// serialization and transport.
package dsl

import (
	"strings"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/temporal"
)

// Wire defaults for the hybrid body.
const (
	DefaultSize          = 10
	DefaultK             = 50
	DefaultNumCandidates = 100
	DefaultGeoDistance   = "50km"
	DefaultCollapseField = "bitstream_uuid"

	temporalBoost = 0.6
	geoBoost      = 2.0
	placeBoost    = 5.0
)

// DefaultExcludes keeps the per-language vectors out of every response.
var DefaultExcludes = []string{"abstract_vector.en", "abstract_vector.ar"}

// Hybrid assembles the two-leg hybrid body: a kNN leg over the query vector
// and a BM25 multi_match leg over the lexical text, both carrying the same
// advisory boosts. Signals only raise scores; with minimum_should_match 0
// no boost ever excludes a document.
type Hybrid struct {
	lexicalText   string
	vector        []float32
	lang          string
	size          int
	k             int
	numCandidates int
	geoDistance   string
	collapseField string
	temporals     []string
	geoRefs       []domain.GeoPoint
	filters       []map[string]any
	excludes      []string
}

// NewHybrid creates a builder with the default body geometry.
func NewHybrid(lexicalText string, vector []float32, lang string) *Hybrid {
	return &Hybrid{
		lexicalText:   lexicalText,
		vector:        vector,
		lang:          lang,
		size:          DefaultSize,
		k:             DefaultK,
		numCandidates: DefaultNumCandidates,
		geoDistance:   DefaultGeoDistance,
		collapseField: DefaultCollapseField,
		excludes:      DefaultExcludes,
	}
}

// WithSize sets the page size. Non-positive values keep the default.
func (h *Hybrid) WithSize(n int) *Hybrid {
	if n > 0 {
		h.size = n
	}
	return h
}

// WithK sets the kNN neighbour count.
func (h *Hybrid) WithK(k int) *Hybrid {
	if k > 0 {
		h.k = k
	}
	return h
}

// WithNumCandidates sets the HNSW ef_search breadth.
func (h *Hybrid) WithNumCandidates(n int) *Hybrid {
	if n > 0 {
		h.numCandidates = n
	}
	return h
}

// WithGeoDistance sets the radius for geo-distance boosts, e.g. "50km".
func (h *Hybrid) WithGeoDistance(d string) *Hybrid {
	if d != "" {
		h.geoDistance = d
	}
	return h
}

// WithCollapse sets the collapse field; empty disables collapsing.
func (h *Hybrid) WithCollapse(field string) *Hybrid {
	h.collapseField = field
	return h
}

// WithTemporals attaches raw temporal phrases; the year-safe subset becomes
// the temporal boost vocabulary.
func (h *Hybrid) WithTemporals(temporals []string) *Hybrid {
	h.temporals = temporals
	return h
}

// WithGeoRefs attaches resolved geo references for distance and place boosts.
func (h *Hybrid) WithGeoRefs(refs []domain.GeoPoint) *Hybrid {
	h.geoRefs = refs
	return h
}

// WithFilters attaches hard filter clauses to both legs. The query pipeline
// passes none today; the slot exists for callers that need true filtering.
func (h *Hybrid) WithFilters(filters []map[string]any) *Hybrid {
	h.filters = filters
	return h
}

// WithSourceExcludes overrides the _source excludes list.
func (h *Hybrid) WithSourceExcludes(excludes []string) *Hybrid {
	h.excludes = excludes
	return h
}

// Build emits the request body.
func (h *Hybrid) Build() map[string]any {
	boosts := temporalBoosts(h.temporals)
	boosts = append(boosts, geoBoosts(h.geoRefs, h.geoDistance)...)

	knnLeg := map[string]any{
		"knn": map[string]any{
			"abstract_vector." + h.lang: map[string]any{
				"vector": h.vector,
				"k":      h.k,
				"method_parameters": map[string]any{
					"ef_search": h.numCandidates,
				},
			},
		},
	}

	lexicalLeg := map[string]any{
		"multi_match": map[string]any{
			"query": h.lexicalText,
			"fields": []string{
				"title." + h.lang + "^3",
				"abstract." + h.lang + "^2",
			},
			"type":                 "best_fields",
			"minimum_should_match": "60%",
		},
	}

	body := map[string]any{
		"size":    h.size,
		"_source": map[string]any{"excludes": h.excludes},
		"query": map[string]any{
			"hybrid": map[string]any{
				"queries": []any{
					wrapWithClauses(knnLeg, h.filters, boosts),
					wrapWithClauses(lexicalLeg, h.filters, boosts),
				},
			},
		},
		"track_total_hits": true,
	}

	if h.collapseField != "" {
		body["collapse"] = map[string]any{"field": h.collapseField}
	}

	return body
}

// wrapWithClauses attaches filters and boosts to a leaf query. A leaf with
// neither stays bare; the no-signal body must not grow bool wrappers.
func wrapWithClauses(leaf map[string]any, filters, boosts []map[string]any) map[string]any {
	if len(filters) == 0 && len(boosts) == 0 {
		return leaf
	}

	clause := map[string]any{"must": []any{leaf}}
	if len(filters) > 0 {
		clause["filter"] = anySlice(filters)
	}
	if len(boosts) > 0 {
		clause["should"] = anySlice(boosts)
		clause["minimum_should_match"] = 0
	}
	return map[string]any{"bool": clause}
}

// temporalBoosts turns raw temporal phrases into one constant_score terms
// boost over the indexed year vocabulary.
func temporalBoosts(temporals []string) []map[string]any {
	safeYears := temporal.SafeYears(temporals)
	if len(safeYears) == 0 {
		return nil
	}

	return []map[string]any{{
		"constant_score": map[string]any{
			"filter": map[string]any{
				"terms": map[string]any{"temporalExpressions": safeYears},
			},
			"boost": temporalBoost,
		},
	}}
}

// geoBoosts builds one nested constant_score geo_distance boost covering all
// resolved points plus a per-place name match boost, deduplicated by
// lowercased place name.
func geoBoosts(refs []domain.GeoPoint, distance string) []map[string]any {
	if len(refs) == 0 {
		return nil
	}

	var placeBoosts []map[string]any
	var distanceClauses []any
	seenPlaces := make(map[string]struct{})

	for _, ref := range refs {
		name := strings.TrimSpace(ref.PlaceName)
		if name != "" {
			key := strings.ToLower(name)
			if _, ok := seenPlaces[key]; !ok {
				seenPlaces[key] = struct{}{}
				placeBoosts = append(placeBoosts, map[string]any{
					"nested": map[string]any{
						"path": "geoReferences",
						"query": map[string]any{
							"match": map[string]any{
								"geoReferences.placeName": map[string]any{
									"query": name,
									"boost": placeBoost,
								},
							},
						},
					},
				})
			}
		}

		distanceClauses = append(distanceClauses, map[string]any{
			"geo_distance": map[string]any{
				"distance": distance,
				"geoReferences.coordinates": map[string]any{
					"lat": ref.Lat,
					"lon": ref.Lon,
				},
			},
		})
	}

	var boosts []map[string]any
	if len(distanceClauses) > 0 {
		boosts = append(boosts, map[string]any{
			"constant_score": map[string]any{
				"filter": map[string]any{
					"nested": map[string]any{
						"path": "geoReferences",
						"query": map[string]any{
							"bool": map[string]any{
								"should":               distanceClauses,
								"minimum_should_match": 0,
							},
						},
					},
				},
				"boost": geoBoost,
			},
		})
	}

	return append(boosts, placeBoosts...)
}

func anySlice(ms []map[string]any) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}
