package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qanat/internal/config"
	"github.com/kailas-cloud/qanat/internal/db/redis"
	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/domain/place"
	"github.com/kailas-cloud/qanat/internal/index/opensearch"
	logpkg "github.com/kailas-cloud/qanat/internal/logger"
	"github.com/kailas-cloud/qanat/internal/metrics"
	"github.com/kailas-cloud/qanat/internal/repository/articles"
	"github.com/kailas-cloud/qanat/internal/repository/embcache"
	"github.com/kailas-cloud/qanat/internal/tokenizer"
	"github.com/kailas-cloud/qanat/internal/transport/geocode"
	"github.com/kailas-cloud/qanat/internal/transport/nlp"
	openaiEmb "github.com/kailas-cloud/qanat/internal/transport/openai"
	ingestuc "github.com/kailas-cloud/qanat/internal/usecase/ingest"
	"github.com/kailas-cloud/qanat/internal/version"
)

func main() {
	filePath := flag.String("file", "", "path to the JSONL records file")
	envFlag := flag.String("env", "", "environment override (default: ENV variable)")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: qanat-ingest -file <records.jsonl> [-env <env>]")
		os.Exit(2)
	}

	env := *envFlag
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qanat ingestion",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("file", *filePath),
		zap.String("index", cfg.OpenSearch.Index),
	)

	// Ctrl-C flushes what is in flight and stops cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := opensearch.NewStore(opensearch.Config{
		Addresses:          cfg.OpenSearch.Addrs,
		Username:           cfg.OpenSearch.Username,
		Password:           cfg.OpenSearch.Password,
		InsecureSkipVerify: cfg.OpenSearch.InsecureSkipVerify,
	})
	if err != nil {
		logger.Fatal("Failed to create OpenSearch store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.OpenSearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("OpenSearch not ready", zap.Error(err))
	}
	logger.Info("Connected to OpenSearch")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSignalMetrics()
	metrics.RegisterIngestMetrics()

	repo := articles.New(store, cfg.OpenSearch.Index)
	if err := repo.Bootstrap(ctx, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to bootstrap article index", zap.Error(err))
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})

	var embedder domain.Embedder = base
	if cfg.Cache.Enabled {
		cacheStore, err := redis.NewStore(redis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		embedder = embcache.New(base, cacheStore, ttl, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	nlpClient := nlp.NewClient(&nlp.Config{
		BaseURL: cfg.NLP.BaseURL,
		Timeout: time.Duration(cfg.NLP.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	temporals := nlp.NewTemporalExtractor(nlpClient)
	locations := nlp.NewLocationExtractor(nlpClient)

	geocoder := geocode.NewResolver(&geocode.Config{
		MinDelay:    time.Duration(cfg.Geocode.MinDelayMs) * time.Millisecond,
		MaxRetries:  cfg.Geocode.MaxRetries,
		CallTimeout: time.Duration(cfg.Geocode.CallTimeoutSec) * time.Second,
		Logger:      logger,
	})

	tok, err := tokenizer.New(cfg.Ingest.Encoding)
	if err != nil {
		logger.Fatal("Failed to load tokenizer encoding", zap.Error(err))
	}

	svc, err := ingestuc.New(repo, embedder, temporals, locations, geocoder, tok, ingestuc.Config{
		MaxTokens: cfg.Ingest.MaxTokens,
		Overlap:   cfg.Ingest.Overlap,
		BatchSize: cfg.Ingest.BatchSize,
		Dims:      cfg.Embedding.Dimensions,
		Stoplist:  place.Stoplist(cfg.Signals.LocationStoplist),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create ingestion service", zap.Error(err))
	}

	f, err := os.Open(*filePath)
	if err != nil {
		logger.Fatal("Failed to open records file", zap.Error(err))
	}
	defer f.Close()

	start := time.Now()

	report, err := svc.Run(ctx, f)
	if err != nil {
		logger.Fatal("Ingestion failed",
			zap.Error(err),
			zap.Int("records", report.Records),
			zap.Int("indexed", report.Indexed),
		)
	}

	logger.Info("Ingestion finished",
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped),
		zap.Int("chunks", report.Chunks),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Duration("took", time.Since(start)),
	)

	if report.Failed > 0 {
		logger.Warn("Some chunks were rejected by the index",
			zap.Int("failed", report.Failed),
			zap.Strings("error_sample", report.ErrorSample),
		)
	}
}
