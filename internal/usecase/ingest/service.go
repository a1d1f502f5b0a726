// Package ingest turns scraped repository records into enriched, chunked,
// vectorized articles and streams them into the index in batches.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/chunk"
	"github.com/kailas-cloud/qanat/internal/domain/place"
	"github.com/kailas-cloud/qanat/internal/index"
	"github.com/kailas-cloud/qanat/internal/metrics"
)

const (
	defaultBatchSize = 500

	// Scraped abstracts are long but bounded; one JSONL line never comes
	// close to this.
	maxLineBytes = 4 << 20
)

// Config tunes chunk geometry and batching.
type Config struct {
	MaxTokens int
	Overlap   int
	BatchSize int
	Dims      int
	Stoplist  place.Stoplist
}

// Service runs the ingestion pipeline. Enrichment is advisory: extraction,
// geocoding and embedding failures degrade the record, they never drop it.
// Only a record with no usable abstract is skipped.
type Service struct {
	repo      Repository
	embed     Embedder
	temporals domain.Extractor
	locations domain.Extractor
	geocoder  domain.Geocoder
	chunker   *chunk.Chunker
	cfg       Config
	logger    *zap.Logger
}

// New creates an ingestion service. Dims must match the index mapping; a
// zero value would let every vector through Prune unchecked.
func New(
	repo Repository, embed Embedder,
	temporals, locations domain.Extractor, geocoder domain.Geocoder,
	tok chunk.Tokenizer, cfg Config, logger *zap.Logger,
) (*Service, error) {
	if cfg.Dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions are required, got %d", cfg.Dims)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = chunk.DefaultMaxTokens
	}
	if cfg.Overlap <= 0 {
		cfg.Overlap = chunk.DefaultOverlap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Stoplist == nil {
		cfg.Stoplist = place.DefaultStoplist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	chunker, err := chunk.New(tok, cfg.MaxTokens, cfg.Overlap)
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}

	return &Service{
		repo:      repo,
		embed:     embed,
		temporals: temporals,
		locations: locations,
		geocoder:  geocoder,
		chunker:   chunker,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Report summarizes one ingestion run. Records counts every non-blank input
// line; Skipped is the subset that produced no chunks. Indexed and Failed
// count chunks, not records.
type Report struct {
	Records     int
	Skipped     int
	Chunks      int
	Indexed     int
	Failed      int
	ErrorSample []string
}

// Process turns one record into its article chunks. A record whose abstract
// is absent in both languages yields nothing.
func (s *Service) Process(ctx context.Context, rec RawRecord) []domain.Article {
	title := Localize(rec.Title)
	abstract := Localize(rec.Abstract)
	if abstract.IsEmpty() {
		return nil
	}

	temporals, locations := s.extractSignals(ctx, abstract)
	geoRefs := s.geocodeAll(ctx, locations)

	// Chunks are cut per language over the full abstract, then aligned by
	// index. Signals stay record-level: every chunk of a record carries the
	// same enrichment.
	pairs := chunk.Pair(
		s.chunker.Split(abstract.EN),
		s.chunker.Split(abstract.AR),
	)
	if len(pairs) == 0 {
		return nil
	}

	pubDate := ParsePublicationDate(rec.PublicationDate)
	authors := rec.Author
	if authors == nil {
		authors = []string{}
	}

	arts := make([]domain.Article, 0, len(pairs))
	for i := range pairs {
		pair := pairs[i]

		var vec domain.LocalizedVector
		for _, l := range domain.Langs() {
			text := pair.Get(l)
			if text == "" {
				continue
			}
			res, err := s.embed.Embed(ctx, text)
			if err != nil {
				s.logger.Warn("embed chunk failed",
					zap.String("bitstream_uuid", rec.BitstreamUUID),
					zap.Int("chunk_id", i),
					zap.String("lang", l),
					zap.Error(err))
				continue
			}
			vec.Set(l, res.Embedding)
		}
		if dropped := vec.Prune(s.cfg.Dims); dropped > 0 {
			s.logger.Warn("dropped wrong-sized vectors",
				zap.String("bitstream_uuid", rec.BitstreamUUID),
				zap.Int("chunk_id", i),
				zap.Int("dropped", dropped))
		}

		art := domain.Article{
			Collection:          rec.Collection,
			BitstreamUUID:       rec.BitstreamUUID,
			ChunkID:             i,
			Abstract:            &pair,
			Author:              authors,
			HasFiles:            rec.HasFiles,
			PublicationDate:     pubDate,
			GeoReferences:       geoRefs,
			TemporalExpressions: temporals,
		}
		if !title.IsEmpty() {
			t := title
			art.Title = &t
		}
		if !vec.IsEmpty() {
			art.AbstractVector = &vec
		}
		arts = append(arts, art)
	}
	return arts
}

// extractSignals runs both extractors over the full abstract in every
// present language and merges the results, English first. Extractor
// failures degrade to empty mentions for that language.
func (s *Service) extractSignals(ctx context.Context, abstract domain.LocalizedText) (temporals, locations []string) {
	for _, l := range domain.Langs() {
		text := abstract.Get(l)
		if text == "" {
			continue
		}

		t, err := s.temporals.Extract(ctx, text, l)
		if err != nil {
			s.logger.Warn("temporal extraction failed", zap.String("lang", l), zap.Error(err))
		}
		temporals = append(temporals, t...)

		loc, err := s.locations.Extract(ctx, text, l)
		if err != nil {
			s.logger.Warn("location extraction failed", zap.String("lang", l), zap.Error(err))
		}
		locations = append(locations, loc...)
	}

	temporals = domain.DedupeKeepOrder(temporals)
	if temporals == nil {
		temporals = []string{}
	}
	locations = domain.DedupeKeepOrder(locations)
	return temporals, locations
}

// geocodeAll resolves every plausible location mention. Unlike the query
// path there is no cap: ingestion runs offline and a document's geo
// footprint should be complete.
func (s *Service) geocodeAll(ctx context.Context, locations []string) []domain.GeoReference {
	refs := []domain.GeoReference{}
	for _, name := range locations {
		if !place.Plausible(name, s.cfg.Stoplist) {
			continue
		}
		ref, err := s.geocoder.Geocode(ctx, strings.TrimSpace(name))
		if err != nil || ref == nil || ref.Coordinates == nil {
			continue
		}
		refs = append(refs, *ref)
	}
	return refs
}

// Run streams JSONL records from r, processes each and bulk-writes chunks
// in batches of BatchSize. Malformed lines are skipped, not fatal; a failed
// bulk write aborts the run with the partial report.
func (s *Service) Run(ctx context.Context, r io.Reader) (*Report, error) {
	report := &Report{}
	var batch []domain.Article

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		report.Records++

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			report.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("skip malformed record", zap.Int("record", report.Records), zap.Error(err))
			continue
		}

		arts := s.Process(ctx, rec)
		if len(arts) == 0 {
			report.Skipped++
			metrics.IngestRecordsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.IngestRecordsTotal.WithLabelValues("processed").Inc()
		report.Chunks += len(arts)

		batch = append(batch, arts...)
		if len(batch) >= s.cfg.BatchSize {
			if err := s.flush(ctx, batch, report); err != nil {
				return report, err
			}
			batch = batch[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return report, fmt.Errorf("read stream: %w", err)
	}

	if len(batch) > 0 {
		if err := s.flush(ctx, batch, report); err != nil {
			return report, err
		}
	}

	// Refresh makes the run's writes searchable immediately. Losing it only
	// delays visibility, so it cannot fail the run.
	if err := s.repo.Refresh(ctx); err != nil {
		s.logger.Warn("index refresh failed", zap.Error(err))
	}

	return report, nil
}

func (s *Service) flush(ctx context.Context, batch []domain.Article, report *Report) error {
	res, err := s.repo.BulkIndex(ctx, batch)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}

	report.Indexed += res.Indexed
	report.Failed += res.Failed
	if res.Failed > 0 {
		metrics.IngestBulkErrorsTotal.Add(float64(res.Failed))
		s.logger.Warn("bulk write rejected chunks",
			zap.Int("failed", res.Failed),
			zap.Strings("errors", res.Errors))
	}
	for _, e := range res.Errors {
		if len(report.ErrorSample) >= index.MaxErrorSample {
			break
		}
		report.ErrorSample = append(report.ErrorSample, e)
	}
	return nil
}
