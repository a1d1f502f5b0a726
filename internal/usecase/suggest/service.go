// Package suggest serves typeahead completions from indexed titles and
// author names.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/search/dsl"
	"github.com/kailas-cloud/qanat/internal/repository/articles"
)

const defaultLimit = 8

// Repository fetches suggestion candidates from the article index.
type Repository interface {
	Suggest(ctx context.Context, prefix string, fetchSize int) ([]articles.SuggestHit, error)
}

// Service flattens candidate hits into a deduped suggestion list. Candidates
// are over-fetched because both title languages and every author of a hit
// compete for the same few output slots.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a suggest service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Suggest returns up to limit completions for prefix: titles in both
// languages and author names, case-insensitively deduplicated preserving
// first-seen order.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, domain.ErrEmptyText
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	hits, err := s.repo.Suggest(ctx, prefix, dsl.FetchSize(limit))
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	seen := make(map[string]struct{})
	suggestions := make([]string, 0, limit)

	add := func(value string) bool {
		value = strings.TrimSpace(value)
		if value == "" {
			return false
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, value)
		return len(suggestions) >= limit
	}

	for _, hit := range hits {
		if add(hit.Title.EN) {
			return suggestions, nil
		}
		if add(hit.Title.AR) {
			return suggestions, nil
		}
		for _, author := range hit.Authors {
			if add(author) {
				return suggestions, nil
			}
		}
	}

	return suggestions, nil
}
