// Package query prepares user queries for hybrid retrieval: language
// routing, signal extraction, text cleaning and vectorization.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/lang"
	"github.com/kailas-cloud/qanat/internal/domain/place"
	"github.com/kailas-cloud/qanat/internal/domain/textnorm"
	"github.com/kailas-cloud/qanat/internal/index"
	"github.com/kailas-cloud/qanat/internal/repository/articles"
)

const defaultMaxGeoRefs = 3

// Config tunes retrieval geometry and signal extraction.
type Config struct {
	K               int
	NumCandidates   int
	GeoDistance     string
	MaxGeoRefs      int
	CollapseField   string
	DisableCollapse bool
	Stoplist        place.Stoplist
}

// Service orchestrates the query path. Signal extraction and geocoding are
// advisory: their failures degrade to an unboosted query. Vectorization is
// not: without a vector there is no semantic leg to run.
type Service struct {
	repo      Repository
	embed     Embedder
	temporals domain.Extractor
	locations domain.Extractor
	geocoder  domain.Geocoder
	cfg       Config
	logger    *zap.Logger
}

// New creates a query service.
func New(
	repo Repository, embed Embedder,
	temporals, locations domain.Extractor, geocoder domain.Geocoder,
	cfg Config, logger *zap.Logger,
) *Service {
	if cfg.MaxGeoRefs <= 0 {
		cfg.MaxGeoRefs = defaultMaxGeoRefs
	}
	if cfg.Stoplist == nil {
		cfg.Stoplist = place.DefaultStoplist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:      repo,
		embed:     embed,
		temporals: temporals,
		locations: locations,
		geocoder:  geocoder,
		cfg:       cfg,
		logger:    logger,
	}
}

// Prepared is a query after language routing, signal extraction and
// vectorization.
type Prepared struct {
	Lang         string
	LexicalText  string
	SemanticText string
	Vector       []float32
	Signals      domain.QuerySignals
}

// ExtractSignals runs both extractors and geocodes the plausible locations
// in order, stopping once MaxGeoRefs are resolved. Extractor failures
// degrade to empty signals of that kind.
func (s *Service) ExtractSignals(ctx context.Context, q, queryLang string) domain.QuerySignals {
	var sig domain.QuerySignals

	temporals, err := s.temporals.Extract(ctx, q, queryLang)
	if err != nil {
		s.logger.Warn("temporal extraction failed", zap.Error(err))
	}
	sig.Temporals = domain.DedupeKeepOrder(temporals)

	locations, err := s.locations.Extract(ctx, q, queryLang)
	if err != nil {
		s.logger.Warn("location extraction failed", zap.Error(err))
	}
	sig.Locations = domain.DedupeKeepOrder(locations)

	for _, name := range sig.Locations {
		if len(sig.GeoRefs) >= s.cfg.MaxGeoRefs {
			break
		}
		if !place.Plausible(name, s.cfg.Stoplist) {
			continue
		}

		ref, err := s.geocoder.Geocode(ctx, strings.TrimSpace(name))
		if err != nil || ref == nil || ref.Coordinates == nil {
			continue
		}
		sig.GeoRefs = append(sig.GeoRefs, domain.GeoPoint{
			PlaceName: ref.PlaceName,
			Lat:       ref.Coordinates.Lat,
			Lon:       ref.Coordinates.Lon,
		})
	}

	return sig
}

// Prepare routes the query to a language, extracts signals and builds the
// two retrieval texts: the semantic text (signals stripped) for the vector
// leg, the lexical text (years stripped, locations kept) for BM25.
func (s *Service) Prepare(ctx context.Context, q string) (Prepared, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Prepared{}, domain.ErrEmptyText
	}

	queryLang := lang.Detect(q)
	signals := s.ExtractSignals(ctx, q, queryLang)

	semanticText := textnorm.CleanQueryText(q, signals.Temporals, signals.Locations)
	lexicalText := textnorm.LexicalText(q, signals.Temporals)

	embedInput := semanticText
	if embedInput == "" {
		// The whole query was signals; the raw text is still the best
		// semantic evidence there is.
		embedInput = q
	}

	emb, err := s.embed.Embed(ctx, embedInput)
	if err != nil {
		return Prepared{}, fmt.Errorf("vectorize query: %w", err)
	}

	return Prepared{
		Lang:         queryLang,
		LexicalText:  lexicalText,
		SemanticText: semanticText,
		Vector:       emb.Embedding,
		Signals:      signals,
	}, nil
}

// Search prepares the query and runs the hybrid body against the index.
func (s *Service) Search(ctx context.Context, q string, size int) (*index.Result, error) {
	prep, err := s.Prepare(ctx, q)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.SearchHybrid(ctx, articles.HybridParams{
		LexicalText:     prep.LexicalText,
		Vector:          prep.Vector,
		Lang:            prep.Lang,
		Size:            size,
		K:               s.cfg.K,
		NumCandidates:   s.cfg.NumCandidates,
		GeoDistance:     s.cfg.GeoDistance,
		CollapseField:   s.cfg.CollapseField,
		DisableCollapse: s.cfg.DisableCollapse,
		Temporals:       prep.Signals.Temporals,
		GeoRefs:         prep.Signals.GeoRefs,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return result, nil
}
