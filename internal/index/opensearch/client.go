// Package opensearch implements index.Store against an OpenSearch cluster
// via the official v2 client.
package opensearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	opensearchclient "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/qanat/internal/index"
)

// Compile-time check: Store implements index.Store.
var _ index.Store = (*Store)(nil)

// Config holds connection parameters for an OpenSearch store.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// InsecureSkipVerify disables TLS certificate verification. Repository
	// clusters run self-signed in every environment but production.
	InsecureSkipVerify bool
}

// Store implements index.Store via the official OpenSearch client.
type Store struct {
	client    *opensearchclient.Client
	transport *http.Transport
}

// NewStore creates an OpenSearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // config-gated
	}

	client, err := opensearchclient.NewClient(opensearchclient.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, transport: transport}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := opensearchapi.PingRequest{}.Do(ctx, s.client)
	if err != nil {
		return &index.Error{Op: index.OpPing, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &index.Error{Op: index.OpPing, Err: fmt.Errorf("status %s", res.Status())}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.transport.CloseIdleConnections()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for cluster: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// apiError drains the response body and extracts the server-side error
// reason, falling back to the HTTP status.
func apiError(op string, res *opensearchapi.Response) error {
	var parsed struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}

	body, readErr := io.ReadAll(res.Body)
	if readErr == nil && json.Unmarshal(body, &parsed) == nil && parsed.Error.Type != "" {
		if parsed.Error.Type == "resource_already_exists_exception" {
			return &index.Error{Op: op, Err: index.ErrIndexExists}
		}
		if parsed.Error.Type == "index_not_found_exception" {
			return &index.Error{Op: op, Err: index.ErrIndexNotFound}
		}
		return &index.Error{Op: op, Err: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Reason)}
	}

	return &index.Error{Op: op, Err: fmt.Errorf("status %s", res.Status())}
}
