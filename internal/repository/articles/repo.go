// Package articles executes retrieval and ingestion against the article
// index. Query documents come from the dsl builders; this layer owns index
// naming, bootstrap and result decoding.
package articles

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/search/dsl"
	"github.com/kailas-cloud/qanat/internal/index"
)

// store is the consumer interface for article index operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body map[string]any) (*index.Result, error)
	Bulk(ctx context.Context, index string, docs []index.BulkDoc) (*index.BulkResult, error)
	EnsureIndex(ctx context.Context, name string, body map[string]any) error
	Refresh(ctx context.Context, name string) error
}

// HybridParams carries a prepared query into the hybrid body builder.
// Zero geometry fields keep the builder defaults.
type HybridParams struct {
	LexicalText   string
	Vector        []float32
	Lang          string
	Size          int
	K             int
	NumCandidates int
	GeoDistance   string
	// CollapseField overrides the default collapse field; DisableCollapse
	// drops the clause entirely and returns every chunk separately.
	CollapseField   string
	DisableCollapse bool
	Temporals       []string
	GeoRefs         []domain.GeoPoint
}

// SuggestHit carries the suggestion-bearing fields of one candidate hit.
type SuggestHit struct {
	Title   domain.LocalizedText `json:"title"`
	Authors []string             `json:"author"`
}

// Repo implements article retrieval over an index store.
type Repo struct {
	store     store
	indexName string
}

// New creates an article repository bound to one index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

// SearchHybrid runs the two-leg hybrid query and returns raw hits. Hit
// sources stay undecoded; the transport serializes them as-is.
func (r *Repo) SearchHybrid(ctx context.Context, p HybridParams) (*index.Result, error) {
	h := dsl.NewHybrid(p.LexicalText, p.Vector, p.Lang).
		WithSize(p.Size).
		WithK(p.K).
		WithNumCandidates(p.NumCandidates).
		WithGeoDistance(p.GeoDistance).
		WithTemporals(p.Temporals).
		WithGeoRefs(p.GeoRefs)

	if p.DisableCollapse {
		h.WithCollapse("")
	} else if p.CollapseField != "" {
		h.WithCollapse(p.CollapseField)
	}

	result, err := r.store.Search(ctx, r.indexName, h.Build())
	if err != nil {
		return nil, fmt.Errorf("search hybrid: %w", err)
	}
	return result, nil
}

// Suggest fetches typeahead candidates. Hits whose source does not decode
// are dropped; one malformed document must not break the typeahead.
func (r *Repo) Suggest(ctx context.Context, prefix string, fetchSize int) ([]SuggestHit, error) {
	result, err := r.store.Search(ctx, r.indexName, dsl.Suggest(prefix, fetchSize))
	if err != nil {
		return nil, fmt.Errorf("search suggest: %w", err)
	}

	hits := make([]SuggestHit, 0, len(result.Hits))
	for _, h := range result.Hits {
		var sh SuggestHit
		if err := json.Unmarshal(h.Source, &sh); err != nil {
			continue
		}
		hits = append(hits, sh)
	}
	return hits, nil
}

// BulkIndex writes article chunks under their uuid_chunk ids.
func (r *Repo) BulkIndex(ctx context.Context, arts []domain.Article) (*index.BulkResult, error) {
	if len(arts) == 0 {
		return &index.BulkResult{}, nil
	}

	docs := make([]index.BulkDoc, 0, len(arts))
	for _, a := range arts {
		docs = append(docs, index.BulkDoc{ID: a.DocID(), Doc: a})
	}

	result, err := r.store.Bulk(ctx, r.indexName, docs)
	if err != nil {
		return nil, fmt.Errorf("bulk index: %w", err)
	}
	return result, nil
}

// Bootstrap ensures the article index exists with the mapping for the
// given vector dimension.
func (r *Repo) Bootstrap(ctx context.Context, dims int) error {
	if err := r.store.EnsureIndex(ctx, r.indexName, index.ArticleMapping(dims)); err != nil {
		return fmt.Errorf("bootstrap index %s: %w", r.indexName, err)
	}
	return nil
}

// Refresh makes recent writes searchable.
func (r *Repo) Refresh(ctx context.Context) error {
	if err := r.store.Refresh(ctx, r.indexName); err != nil {
		return fmt.Errorf("refresh index %s: %w", r.indexName, err)
	}
	return nil
}
