package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestHelpersSafeBeforeInit(t *testing.T) {
	// The nil guards make every helper callable before Init, which keeps
	// library packages usable from tests that never register metrics.
	CountProfileRequest()
	CountProfileFailure()
	CountTokenRefresh()
	CountAuthRetry()
	CountLegacyFallback()
	ObserveUpstream(10 * time.Millisecond)
}

func TestInitIdempotent(t *testing.T) {
	// A second Init must not re-register collectors (promauto panics on
	// duplicate registration).
	Init()
	Init()
	if ProfileRequests == nil || UpstreamDuration == nil {
		t.Fatal("metrics not registered after Init")
	}
	CountProfileRequest()
	ObserveUpstream(5 * time.Millisecond)
}

func TestTimeFunc(t *testing.T) {
	d := TimeFunc(nil, func() { time.Sleep(10 * time.Millisecond) })
	if d < 10*time.Millisecond {
		t.Errorf("TimeFunc() = %v, want >= 10ms", d)
	}
}

func TestCorrelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("GetCorrelation(empty) = %q, want empty", got)
	}

	ctx = WithCorrelation(ctx, "corr-123")
	if got := GetCorrelation(ctx); got != "corr-123" {
		t.Errorf("GetCorrelation() = %q, want corr-123", got)
	}

	if LoggerWithCorr(ctx) == nil {
		t.Fatal("LoggerWithCorr() = nil")
	}
	if LoggerWithCorr(context.Background()) == nil {
		t.Fatal("LoggerWithCorr(no corr) = nil")
	}
}
