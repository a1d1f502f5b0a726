package query

import (
	"context"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/index"
	"github.com/kailas-cloud/qanat/internal/repository/articles"
)

// Repository runs hybrid retrieval against the article index.
type Repository interface {
	SearchHybrid(ctx context.Context, p articles.HybridParams) (*index.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
