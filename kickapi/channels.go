// Package kickapi contains clients for the Kick OAuth token endpoint and the
// channel APIs: the token-authenticated public v1 API and the legacy website
// API used to backfill fields v1 does not expose.
package kickapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/kick-profile/backend/apperr"
	"github.com/onnwee/kick-profile/backend/telemetry"
)

const (
	defaultChannelsURL = "https://api.kick.com/public/v1/channels"
	defaultLegacyURL   = "https://kick.com/api/v2/channels"
)

// Query identifies a channel by slug or by broadcaster user id. Exactly one
// must be set. Slugs are matched case-insensitively by Kick but the value is
// passed through untouched apart from surrounding whitespace.
type Query struct {
	Slug          string
	BroadcasterID int64
}

// Validate checks the exactly-one-identifier invariant.
func (q Query) Validate() error {
	slug := strings.TrimSpace(q.Slug)
	if slug == "" && q.BroadcasterID <= 0 {
		return apperr.New(apperr.KindValidation, "slug or broadcaster_user_id required")
	}
	if slug != "" && q.BroadcasterID > 0 {
		return apperr.New(apperr.KindValidation, "slug and broadcaster_user_id are mutually exclusive")
	}
	return nil
}

// Client fetches raw channel records using an app access token.
type Client struct {
	HTTPClient  *http.Client
	ChannelsURL string // defaults to the public v1 channels API
	LegacyURL   string // defaults to the v2 website API
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// FetchChannel queries the public channels API for the given identifier. The
// v1 shape never includes follower count, verification, or creation date, so
// a matching record is enriched from the legacy website API when possible;
// any legacy failure (403 from bot mitigation, 404, transport error) falls
// back silently to the primary record alone. Partial data beats no data.
func (c *Client) FetchChannel(ctx context.Context, q Query, token string) (Record, error) {
	if err := q.Validate(); err != nil {
		return Record{}, err
	}

	primary, err := c.fetchPrimary(ctx, q, token)
	if err != nil {
		return Record{}, err
	}

	slug := strings.TrimSpace(q.Slug)
	if slug == "" {
		// Lookup was by broadcaster id; the primary record supplies the slug
		// the legacy API needs.
		slug = primary.Slug
	}
	legacy, err := c.fetchLegacy(ctx, slug)
	if err != nil {
		telemetry.CountLegacyFallback()
		slog.Debug("legacy channel lookup failed, serving primary record only",
			slog.String("slug", slug), slog.Any("err", err))
		return Record{Source: SourcePrimary, Primary: primary}, nil
	}
	return Record{Source: SourceMerged, Primary: primary, Legacy: legacy}, nil
}

func (c *Client) fetchPrimary(ctx context.Context, q Query, token string) (*PrimaryChannel, error) {
	base := c.ChannelsURL
	if base == "" {
		base = defaultChannelsURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "build channels request", err)
	}
	qs := url.Values{}
	if slug := strings.TrimSpace(q.Slug); slug != "" {
		qs.Set("slug", slug)
	} else {
		qs.Set("broadcaster_user_id", strconv.FormatInt(q.BroadcasterID, 10))
	}
	req.URL.RawQuery = qs.Encode()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http().Do(req)
	telemetry.ObserveUpstream(time.Since(start))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "kick channels request failed", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperr.New(apperr.KindAuth, fmt.Sprintf("kick rejected app token: %s", resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.New(apperr.KindNotFound, "channel not found")
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.New(apperr.KindUpstream, fmt.Sprintf("kick channels request failed: %s: %s", resp.Status, string(b)))
	}

	var body struct {
		Data []PrimaryChannel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "decode kick channels response", err)
	}
	if len(body.Data) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "channel not found")
	}
	return &body.Data[0], nil
}

// fetchLegacy queries the v2 website API by slug. It sends browser-like
// headers because the endpoint sits behind bot mitigation; errors here are
// never surfaced to callers of FetchChannel.
func (c *Client) fetchLegacy(ctx context.Context, slug string) (*LegacyChannel, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug empty")
	}
	base := c.LegacyURL
	if base == "" {
		base = defaultLegacyURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := c.http().Do(req)
	telemetry.ObserveUpstream(time.Since(start))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("legacy channels request failed: %s", resp.Status)
	}

	var ch LegacyChannel
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return nil, fmt.Errorf("decode legacy channel: %w", err)
	}
	return &ch, nil
}
