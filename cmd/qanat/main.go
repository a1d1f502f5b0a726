package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
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
	chiTransport "github.com/kailas-cloud/qanat/internal/transport/chi"
	"github.com/kailas-cloud/qanat/internal/transport/geocode"
	"github.com/kailas-cloud/qanat/internal/transport/nlp"
	openaiEmb "github.com/kailas-cloud/qanat/internal/transport/openai"
	healthuc "github.com/kailas-cloud/qanat/internal/usecase/health"
	queryuc "github.com/kailas-cloud/qanat/internal/usecase/query"
	suggestuc "github.com/kailas-cloud/qanat/internal/usecase/suggest"
	"github.com/kailas-cloud/qanat/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qanat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("opensearch_addrs", cfg.OpenSearch.Addrs),
		zap.String("index", cfg.OpenSearch.Index),
	)

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

	// Wait for the cluster to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.OpenSearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("OpenSearch not ready", zap.Error(err))
	}
	logger.Info("Connected to OpenSearch")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSignalMetrics()

	// Ensure the article index exists before serving
	repo := articles.New(store, cfg.OpenSearch.Index)
	if err := repo.Bootstrap(ctx, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Failed to bootstrap article index", zap.Error(err))
	}

	// Build the embedder chain: provider, optionally wrapped in the cache
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

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

	// Signal extraction collaborators
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

	// Create use case services
	querySvc := queryuc.New(repo, embedder, temporals, locations, geocoder, queryuc.Config{
		K:               cfg.Search.K,
		NumCandidates:   cfg.Search.NumCandidates,
		GeoDistance:     cfg.Search.GeoDistance,
		MaxGeoRefs:      cfg.Search.MaxGeoRefs,
		CollapseField:   cfg.Search.CollapseField,
		DisableCollapse: cfg.Search.DisableCollapse,
		Stoplist:        place.Stoplist(cfg.Signals.LocationStoplist),
	}, logger)
	suggestSvc := suggestuc.New(repo, logger)
	healthSvc := healthuc.New(store, base)

	// Create chi server
	server := chiTransport.NewServer(querySvc, suggestSvc, healthSvc, chiTransport.Limits{
		SearchDefaultSize:   cfg.Search.DefaultSize,
		SearchMaxSize:       cfg.Search.MaxSize,
		SuggestDefaultLimit: cfg.Suggest.DefaultLimit,
		SuggestMaxLimit:     cfg.Suggest.MaxLimit,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Post("/api/search", server.SearchArticles)
	r.Get("/api/suggest", server.Suggest)
	r.Get("/health", server.HealthCheck)
	r.Get("/metrics", server.Metrics)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
