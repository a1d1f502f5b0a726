package nlp

import (
	"context"
	"strings"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/metrics"
)

// Entity-type filters. Stanza's NER tag set; the Arabic date search reports
// its matches as DATE.
var (
	temporalTypes = map[string]bool{"DATE": true, "TIME": true, "DURATION": true, "SET": true}
	locationTypes = map[string]bool{"GPE": true, "LOC": true, "FAC": true, "ORG": true}
)

// TemporalExtractor implements domain.Extractor for temporal expressions.
type TemporalExtractor struct {
	client *Client
}

// NewTemporalExtractor creates a temporal expression extractor over the sidecar.
func NewTemporalExtractor(c *Client) *TemporalExtractor {
	return &TemporalExtractor{client: c}
}

func (e *TemporalExtractor) Extract(ctx context.Context, text, lang string) ([]string, error) {
	return extract(ctx, e.client, "temporal", text, lang, temporalTypes)
}

// LocationExtractor implements domain.Extractor for place mentions.
type LocationExtractor struct {
	client *Client
}

// NewLocationExtractor creates a place-name extractor over the sidecar.
func NewLocationExtractor(c *Client) *LocationExtractor {
	return &LocationExtractor{client: c}
}

func (e *LocationExtractor) Extract(ctx context.Context, text, lang string) ([]string, error) {
	return extract(ctx, e.client, "location", text, lang, locationTypes)
}

// extract validates input, queries the sidecar and keeps mentions whose type
// is in allowed, preserving document order.
func extract(ctx context.Context, c *Client, kind, text, lang string, allowed map[string]bool) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	if lang != domain.LangEN && lang != domain.LangAR {
		return nil, domain.NewUnsupportedLanguage(lang)
	}

	ents, err := c.entities(ctx, text, lang)
	if err != nil {
		metrics.ExtractRequestsTotal.WithLabelValues(kind, lang, "error").Inc()
		return nil, err
	}
	metrics.ExtractRequestsTotal.WithLabelValues(kind, lang, "success").Inc()

	var mentions []string
	for _, ent := range ents {
		if allowed[ent.Type] {
			mentions = append(mentions, ent.Text)
		}
	}
	return mentions, nil
}
