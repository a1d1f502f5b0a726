// Package geocode resolves place names to coordinates through Nominatim.
// The public endpoint allows one request per second per client, so the
// resolver is a serialized, rate-limited resource shared by the query and
// ingestion pipelines.
package geocode

import (
	"context"
	"time"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/qanat/internal/domain"
	"github.com/kailas-cloud/qanat/internal/metrics"
)

const (
	defaultMinDelay    = time.Second
	defaultMaxRetries  = 2
	defaultCallTimeout = 5 * time.Second
	retryBackoff       = 500 * time.Millisecond
)

// forwardGeocoder is the slice of geo.Geocoder the resolver needs.
type forwardGeocoder interface {
	Geocode(address string) (*geo.Location, error)
}

// Config holds resolver settings.
type Config struct {
	// MinDelay is the minimum spacing between upstream calls.
	MinDelay time.Duration
	// MaxRetries is the number of retries after a failed call.
	MaxRetries int
	// CallTimeout bounds a single upstream call.
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// Resolver implements domain.Geocoder over Nominatim. Lookup failures of any
// kind collapse to (nil, nil): geocoding is advisory and must never abort the
// surrounding pipeline.
type Resolver struct {
	geocoder    forwardGeocoder
	limiter     *rate.Limiter
	maxRetries  int
	callTimeout time.Duration
	logger      *zap.Logger

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration)
}

// NewResolver creates a rate-limited Nominatim resolver.
func NewResolver(cfg *Config) *Resolver {
	return newResolver(openstreetmap.Geocoder(), cfg)
}

func newResolver(g forwardGeocoder, cfg *Config) *Resolver {
	minDelay := cfg.MinDelay
	if minDelay <= 0 {
		minDelay = defaultMinDelay
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		geocoder:    g,
		limiter:     rate.NewLimiter(rate.Every(minDelay), 1),
		maxRetries:  maxRetries,
		callTimeout: callTimeout,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Geocode implements domain.Geocoder.
func (r *Resolver) Geocode(ctx context.Context, placeName string) (*domain.GeoReference, error) {
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			r.sleep(ctx, retryBackoff)
		}
		if err := r.limiter.Wait(ctx); err != nil {
			// Context gone; nothing upstream was hit.
			metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
			return nil, nil
		}

		loc, err := r.lookup(ctx, placeName)
		if err != nil {
			r.logger.Warn("geocode attempt failed",
				zap.String("place", placeName),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if loc == nil {
			metrics.GeocodeRequestsTotal.WithLabelValues("miss").Inc()
			return nil, nil
		}

		metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
		return &domain.GeoReference{
			PlaceName: placeName,
			Coordinates: &domain.Coordinates{
				Lat: loc.Lat,
				Lon: loc.Lng,
			},
		}, nil
	}

	metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
	return nil, nil
}

// lookup races the context-less geo-golang call against ctx and the call
// timeout. A timed-out goroutine is abandoned; its late result is dropped.
func (r *Resolver) lookup(ctx context.Context, placeName string) (*geo.Location, error) {
	type result struct {
		loc *geo.Location
		err error
	}

	ch := make(chan result, 1)
	go func() {
		loc, err := r.geocoder.Geocode(placeName)
		ch <- result{loc: loc, err: err}
	}()

	timer := time.NewTimer(r.callTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.loc, res.err
	case <-timer.C:
		return nil, context.DeadlineExceeded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
