package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/qanat/internal/index"
)

// Search executes a query body against an index.
func (s *Store) Search(ctx context.Context, indexName string, body map[string]any) (*index.Result, error) {
	if indexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(payload),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apiError(index.OpSearch, res)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}

	return parseSearchResponse(raw)
}

// parseSearchResponse decodes the hits envelope. Total is -1 when the
// query ran with total hit tracking disabled.
func parseSearchResponse(raw []byte) (*index.Result, error) {
	var parsed struct {
		Hits struct {
			Total *struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string          `json:"_id"`
				Score  float64         `json:"_score"`
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &index.Result{Total: -1}
	if parsed.Hits.Total != nil {
		result.Total = parsed.Hits.Total.Value
	}

	for _, h := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, index.Hit{
			ID:     h.ID,
			Score:  h.Score,
			Source: h.Source,
		})
	}

	return result, nil
}
