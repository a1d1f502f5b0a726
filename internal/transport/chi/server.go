package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/index"
	logpkg "github.com/kailas-cloud/qanat/internal/logger"
	healthuc "github.com/kailas-cloud/qanat/internal/usecase/health"
)

// minPrefixRunes is the shortest suggest prefix worth completing.
const minPrefixRunes = 3

// Fallbacks for Limits fields left at zero.
const (
	defaultSearchSize   = 10
	defaultSearchMax    = 100
	defaultSuggestLimit = 8
	defaultSuggestMax   = 20
)

// Error codes carried in the error envelope.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeUnauthorized           = "unauthorized"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeVectorDimMismatch      = "vector_dim_mismatch"
	codeInternalError          = "internal_error"
)

// ErrorResponse is the JSON error envelope for failed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds request-supplied result sizes. Zero fields take the
// package defaults.
type Limits struct {
	SearchDefaultSize   int
	SearchMaxSize       int
	SuggestDefaultLimit int
	SuggestMaxLimit     int
}

// searcher runs a user query through the hybrid retrieval pipeline.
type searcher interface {
	Search(ctx context.Context, q string, size int) (*index.Result, error)
}

// suggester serves typeahead completions for a prefix.
type suggester interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}

// healthChecker aggregates component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server exposes retrieval over HTTP.
type Server struct {
	search        searcher
	suggest       suggester
	health        healthChecker
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search searcher,
	suggest suggester,
	health healthChecker,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.SearchDefaultSize <= 0 {
		limits.SearchDefaultSize = defaultSearchSize
	}
	if limits.SearchMaxSize <= 0 {
		limits.SearchMaxSize = defaultSearchMax
	}
	if limits.SuggestDefaultLimit <= 0 {
		limits.SuggestDefaultLimit = defaultSuggestLimit
	}
	if limits.SuggestMaxLimit <= 0 {
		limits.SuggestMaxLimit = defaultSuggestMax
	}

	s := &Server{
		search:  search,
		suggest: suggest,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedLanguage, http.StatusBadRequest, codeValidationFailed),
		// Vectors come from the provider, never from the request, so a
		// dimension mismatch is an upstream fault.
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, codeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
	}
	return s
}

// searchRequest is the POST /api/search body. Size is a pointer to tell an
// absent field from an explicit zero.
type searchRequest struct {
	Q    string `json:"q"`
	Size *int   `json:"size"`
}

// searchHit is one scored document in a search response.
type searchHit struct {
	ID     string          `json:"id"`
	Score  float64         `json:"score"`
	Source json.RawMessage `json:"source"`
}

// searchResponse is the POST /api/search payload. Total is -1 when the
// query ran with total-hit tracking disabled.
type searchResponse struct {
	Total int         `json:"total"`
	Hits  []searchHit `json:"hits"`
}

// SearchArticles handles POST /api/search.
func (s *Server) SearchArticles(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Q) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query text is required")
		return
	}

	size := s.limits.SearchDefaultSize
	if req.Size != nil {
		if *req.Size <= 0 || *req.Size > s.limits.SearchMaxSize {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("size must be between 1 and %d", s.limits.SearchMaxSize))
			return
		}
		size = *req.Size
	}

	result, err := s.search.Search(r.Context(), req.Q, size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	hits := make([]searchHit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = searchHit{ID: h.ID, Score: h.Score, Source: h.Source}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Total: result.Total,
		Hits:  hits,
	})
}

// Suggest handles GET /api/suggest. The response is a raw JSON list of
// strings, never null.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(prefix) < minPrefixRunes {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("q must be at least %d characters", minPrefixRunes))
		return
	}

	limit := s.limits.SuggestDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > s.limits.SuggestMaxLimit {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("limit must be between 1 and %d", s.limits.SuggestMaxLimit))
			return
		}
		limit = n
	}

	suggestions, err := s.suggest.Suggest(r.Context(), prefix, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// healthResponse is the GET /health payload.
type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyText,
		domain.ErrUnsupportedLanguage,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// requestLogger returns the request-scoped logger installed by the logging
// middleware, so error lines carry the request id.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l != nil {
		return l
	}
	return s.logger
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := s.requestLogger(r)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
