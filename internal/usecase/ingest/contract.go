package ingest

import (
	"context"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/index"
)

// Repository writes article chunks to the index.
type Repository interface {
	BulkIndex(ctx context.Context, arts []domain.Article) (*index.BulkResult, error)
	Refresh(ctx context.Context) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
