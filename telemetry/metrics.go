// Package telemetry provides Prometheus metrics and correlation-id aware
// logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	ProfileRequests prometheus.Counter
	ProfileFailures prometheus.Counter
	TokenRefreshes  prometheus.Counter
	AuthRetries     prometheus.Counter
	LegacyFallbacks prometheus.Counter

	// Histograms (seconds)
	UpstreamDuration prometheus.Observer
	ProfileDuration  prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ProfileRequests = promauto.NewCounter(prometheus.CounterOpts{Name: "profile_requests_total", Help: "Number of profile lookups served"})
		ProfileFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "profile_failures_total", Help: "Number of profile lookups that returned an error"})
		TokenRefreshes = promauto.NewCounter(prometheus.CounterOpts{Name: "kick_token_refreshes_total", Help: "Number of app token exchanges performed"})
		AuthRetries = promauto.NewCounter(prometheus.CounterOpts{Name: "kick_auth_retries_total", Help: "Number of fetches retried after a rejected token"})
		LegacyFallbacks = promauto.NewCounter(prometheus.CounterOpts{Name: "kick_legacy_fallbacks_total", Help: "Number of requests served from the primary record after a legacy lookup failure"})
		UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "kick_upstream_duration_seconds", Help: "Upstream request duration seconds", Buckets: prometheus.DefBuckets})
		ProfileDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "profile_duration_seconds", Help: "End-to-end profile lookup duration seconds", Buckets: prometheus.DefBuckets})
	})
}

// CountProfileRequest increments the request counter if metrics are registered.
func CountProfileRequest() {
	if ProfileRequests != nil {
		ProfileRequests.Inc()
	}
}

// CountProfileFailure increments the failure counter if metrics are registered.
func CountProfileFailure() {
	if ProfileFailures != nil {
		ProfileFailures.Inc()
	}
}

// CountTokenRefresh increments the token exchange counter if metrics are registered.
func CountTokenRefresh() {
	if TokenRefreshes != nil {
		TokenRefreshes.Inc()
	}
}

// CountAuthRetry increments the auth retry counter if metrics are registered.
func CountAuthRetry() {
	if AuthRetries != nil {
		AuthRetries.Inc()
	}
}

// CountLegacyFallback increments the fallback counter if metrics are registered.
func CountLegacyFallback() {
	if LegacyFallbacks != nil {
		LegacyFallbacks.Inc()
	}
}

// ObserveUpstream records one upstream round-trip duration if metrics are registered.
func ObserveUpstream(d time.Duration) {
	if UpstreamDuration != nil {
		UpstreamDuration.Observe(d.Seconds())
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
