package kickapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/onnwee/kick-profile/backend/apperr"
	"github.com/onnwee/kick-profile/backend/telemetry"
)

const (
	defaultTokenURL = "https://id.kick.com/oauth/token"

	// defaultTokenLifetime is assumed when the token endpoint omits
	// expires_in; tokens are never treated as eternal.
	defaultTokenLifetime = time.Hour

	// defaultSafetyMargin is subtracted from the declared expiry so a token
	// is never handed out moments before it lapses upstream.
	defaultSafetyMargin = 30 * time.Second
)

// TokenSource fetches and caches a Kick app access (client credentials) token.
// It is safe for concurrent use; concurrent refreshes of an expired token
// collapse into a single in-flight exchange shared by all waiters.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	TokenURL     string        // defaults to the Kick id server
	Margin       time.Duration // safety margin before expiry; defaults to 30s
	HTTPClient   *http.Client

	now   func() time.Time
	group singleflight.Group

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// Get returns a valid (fresh or cached) app access token.
func (ts *TokenSource) Get(ctx context.Context) (string, error) {
	ts.mu.RLock()
	if ts.usable(ts.clock()) {
		tok := ts.token
		ts.mu.RUnlock()
		return tok, nil
	}
	ts.mu.RUnlock()

	// Waiters piggyback on the first caller's exchange. The shared call runs
	// under that caller's context; exchanges are idempotent so a cancelled
	// leader only costs the followers one extra round trip.
	v, err, _ := ts.group.Do("token", func() (any, error) {
		return ts.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next Get performs a fresh
// exchange. Called when Kick rejects a token that looked valid locally.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.token = ""
	ts.expiresAt = time.Time{}
	ts.mu.Unlock()
}

// SetToken seeds the cache with a known token and expiry. Intended for tests.
func (ts *TokenSource) SetToken(token string, expiresAt time.Time) {
	ts.mu.Lock()
	ts.token = token
	ts.expiresAt = expiresAt
	ts.mu.Unlock()
}

func (ts *TokenSource) refresh(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.usable(ts.clock()) {
		return ts.token, nil
	}
	if ts.ClientID == "" || ts.ClientSecret == "" {
		return "", apperr.New(apperr.KindAuth, "missing client id/secret for kick app token")
	}

	tokenURL := ts.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	cc := clientcredentials.Config{
		ClientID:     ts.ClientID,
		ClientSecret: ts.ClientSecret,
		TokenURL:     tokenURL,
		// Kick expects credentials in the form body, not basic auth.
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if ts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, ts.HTTPClient)
	}

	tok, err := cc.Token(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "kick token exchange failed", err)
	}
	if tok.AccessToken == "" {
		return "", apperr.New(apperr.KindAuth, "empty access_token in kick response")
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = ts.clock().Add(defaultTokenLifetime)
	}
	ts.token = tok.AccessToken
	ts.expiresAt = expiresAt
	telemetry.CountTokenRefresh()
	slog.Debug("kick app token refreshed", slog.Time("expires_at", expiresAt))
	return ts.token, nil
}

// usable reports whether the cached token is still inside its safety margin.
// Callers must hold at least a read lock.
func (ts *TokenSource) usable(now time.Time) bool {
	return ts.token != "" && now.Before(ts.expiresAt.Add(-ts.margin()))
}

func (ts *TokenSource) margin() time.Duration {
	if ts.Margin > 0 {
		return ts.Margin
	}
	return defaultSafetyMargin
}

func (ts *TokenSource) clock() time.Time {
	if ts.now != nil {
		return ts.now()
	}
	return time.Now()
}
