// Package nlp talks to the NER sidecar that wraps the language pipelines
// (Stanza for English, date search for Arabic). The sidecar exposes typed
// entity mentions; this package filters them into the two extractor
// contracts the query and ingestion pipelines consume.
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Config holds the sidecar connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client is the HTTP client for the NLP sidecar. Pipeline warmup state is
// owned by the client instance, not the package, so wiring stays explicit.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger

	mu     sync.Mutex
	warmed map[string]bool
}

// NewClient creates a sidecar client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
		warmed:  make(map[string]bool),
	}
}

type entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type entitiesRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type entitiesResponse struct {
	Entities []entity `json:"entities"`
}

type pipelineRequest struct {
	Lang string `json:"lang"`
}

// ensurePipeline warms the sidecar pipeline for lang. Pipeline construction
// loads models and is expensive, so a successful warmup is done once per
// language per client; concurrent callers for the same language serialize
// behind the mutex rather than triggering duplicate loads.
func (c *Client) ensurePipeline(ctx context.Context, lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.warmed[lang] {
		return nil
	}

	if err := c.post(ctx, "/v1/pipelines", pipelineRequest{Lang: lang}, nil); err != nil {
		return fmt.Errorf("warm pipeline %q: %w", lang, err)
	}

	c.warmed[lang] = true
	c.logger.Info("nlp pipeline ready", zap.String("lang", lang))
	return nil
}

// entities returns all typed entity mentions for text, warming the pipeline
// first when needed.
func (c *Client) entities(ctx context.Context, text, lang string) ([]entity, error) {
	if err := c.ensurePipeline(ctx, lang); err != nil {
		return nil, err
	}

	var resp entitiesResponse
	if err := c.post(ctx, "/v1/entities", entitiesRequest{Text: text, Lang: lang}, &resp); err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}
	return resp.Entities, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sidecar returned %d: %s", resp.StatusCode, string(snippet))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
