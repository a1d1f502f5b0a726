package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/qanat/internal/index"
)

// IndexExists reports whether the named index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, s.client)
	if err != nil {
		return false, &index.Error{Op: index.OpIndexExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, &index.Error{Op: index.OpIndexExists, Err: fmt.Errorf("status %s", res.Status())}
	}
}

// CreateIndex creates the named index with the given settings and mappings.
// Creating an index that already exists returns index.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &index.Error{Op: index.OpCreateIndex, Err: err}
	}

	res, err := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(payload),
	}.Do(ctx, s.client)
	if err != nil {
		return &index.Error{Op: index.OpCreateIndex, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return apiError(index.OpCreateIndex, res)
	}
	return nil
}

// EnsureIndex creates the index unless it already exists.
func (s *Store) EnsureIndex(ctx context.Context, name string, body map[string]any) error {
	exists, err := s.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.CreateIndex(ctx, name, body)
	// Lost the creation race to another instance.
	if err != nil && errors.Is(err, index.ErrIndexExists) {
		return nil
	}
	return err
}

// Refresh makes recent writes to the named index searchable.
func (s *Store) Refresh(ctx context.Context, name string) error {
	res, err := opensearchapi.IndicesRefreshRequest{Index: []string{name}}.Do(ctx, s.client)
	if err != nil {
		return &index.Error{Op: index.OpRefresh, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return apiError(index.OpRefresh, res)
	}
	return nil
}
