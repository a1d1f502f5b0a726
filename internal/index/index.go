// Package index defines the search backend contract. Query builders hand it
// plain body maps; drivers own serialization, transport and response
// decoding.
package index

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the search backend facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces they need.
type Store interface {
	Pinger
	Searcher
	BulkIndexer
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher executes a query body against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any) (*Result, error)
}

// BulkIndexer writes document batches.
type BulkIndexer interface {
	Bulk(ctx context.Context, index string, docs []BulkDoc) (*BulkResult, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, body map[string]any) error
	EnsureIndex(ctx context.Context, name string, body map[string]any) error
	Refresh(ctx context.Context, name string) error
}

// Hit is a single document returned by a search.
type Hit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// Result is the output of a search operation. Total is -1 when the query
// disabled total hit tracking.
type Result struct {
	Total int
	Hits  []Hit
}

// BulkDoc is one document in a bulk write, indexed under ID.
type BulkDoc struct {
	ID  string
	Doc any
}

// MaxErrorSample bounds the per-batch error sample in BulkResult.
const MaxErrorSample = 5

// BulkResult summarizes a bulk write. Errors holds at most MaxErrorSample
// per-item failure descriptions.
type BulkResult struct {
	Indexed int
	Failed  int
	Errors  []string
}
