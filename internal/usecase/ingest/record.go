package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/lang"
	"github.com/kailas-cloud/qanat/internal/domain/textnorm"
)

// RawRecord is one JSONL line of scraped repository output. Title and
// abstract arrive keyed by the scraper's language guess; the guess is wrong
// often enough that routing trusts the detected language of the value
// instead.
type RawRecord struct {
	Collection      string              `json:"collection"`
	BitstreamUUID   string              `json:"bitstream_uuid"`
	Title           map[string][]string `json:"title"`
	Abstract        map[string][]string `json:"abstract"`
	Author          []string            `json:"author"`
	HasFiles        bool                `json:"hasFiles"`
	PublicationDate any                 `json:"publicationDate"`
}

// Localize sanitizes the first value of each entry and routes it by its
// detected language. Values outside the indexed pair are dropped. Keys are
// visited in sorted order so collisions resolve the same way every run.
func Localize(raw map[string][]string) domain.LocalizedText {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out domain.LocalizedText
	for _, k := range keys {
		values := raw[k]
		if len(values) == 0 {
			continue
		}
		clean := textnorm.Sanitize(values[0])
		if clean == "" {
			continue
		}
		detected, ok := lang.DetectStrict(clean)
		if !ok {
			continue
		}
		out.Set(detected, clean)
	}
	return out
}

// ParsePublicationDate normalizes the scraped value for the date field: a
// bare year (number or 4-digit string) becomes January 1st of that year, a
// valid ISO date passes through, anything else is absent.
func ParsePublicationDate(value any) string {
	switch v := value.(type) {
	case float64:
		return yearToDate(int(v))
	case int:
		return yearToDate(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		if len(s) == 4 && isDigits(s) {
			year, _ := strconv.Atoi(s)
			return yearToDate(year)
		}
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format("2006-01-02")
		}
		return ""
	}
	return ""
}

func yearToDate(year int) string {
	if year < 1000 || year > 9999 {
		return ""
	}
	return fmt.Sprintf("%04d-01-01", year)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
