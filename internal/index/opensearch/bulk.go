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

// Bulk indexes a batch of documents. Per-item failures do not fail the
// call; they are counted and sampled in the result.
func (s *Store) Bulk(ctx context.Context, indexName string, docs []index.BulkDoc) (*index.BulkResult, error) {
	if indexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(docs) == 0 {
		return &index.BulkResult{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		action := map[string]any{
			"index": map[string]any{"_index": indexName, "_id": d.ID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, &index.Error{Op: index.OpBulk, Err: err}
		}
		if err := enc.Encode(d.Doc); err != nil {
			return nil, &index.Error{Op: index.OpBulk, Err: err}
		}
	}

	res, err := opensearchapi.BulkRequest{
		Index: indexName,
		Body:  &buf,
	}.Do(ctx, s.client)
	if err != nil {
		return nil, &index.Error{Op: index.OpBulk, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apiError(index.OpBulk, res)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &index.Error{Op: index.OpBulk, Err: err}
	}

	return parseBulkResponse(raw)
}

func parseBulkResponse(raw []byte) (*index.BulkResult, error) {
	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}

	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &index.Error{Op: index.OpBulk, Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &index.BulkResult{}
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				result.Indexed++
				continue
			}
			result.Failed++
			if len(result.Errors) < index.MaxErrorSample && op.Error != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %s: %s", op.ID, op.Error.Type, op.Error.Reason))
			}
		}
	}

	return result, nil
}
