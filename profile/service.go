// Package profile turns raw Kick channel records into the stable profile
// contract served to clients, orchestrating token acquisition, channel
// fetching, and normalization for each request.
package profile

import (
	"context"
	"time"

	"github.com/onnwee/kick-profile/backend/apperr"
	"github.com/onnwee/kick-profile/backend/kickapi"
	"github.com/onnwee/kick-profile/backend/telemetry"
)

// Service is the single entry point the HTTP layer calls.
type Service struct {
	Tokens   *kickapi.TokenSource
	Channels *kickapi.Client

	now func() time.Time
}

// GetProfile validates the query, obtains an app token, fetches the raw
// channel record, and normalizes it. When Kick rejects a token that looked
// valid locally, the cached token is invalidated and the fetch retried
// exactly once with a fresh one; a second rejection is final. NotFound and
// upstream errors pass through unchanged.
func (s *Service) GetProfile(ctx context.Context, q kickapi.Query) (NormalizedProfile, error) {
	if err := q.Validate(); err != nil {
		return NormalizedProfile{}, err
	}
	telemetry.CountProfileRequest()

	start := time.Now()
	prof, err := s.getProfile(ctx, q)
	if obs := telemetry.ProfileDuration; obs != nil {
		obs.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		telemetry.CountProfileFailure()
		return NormalizedProfile{}, err
	}
	return prof, nil
}

func (s *Service) getProfile(ctx context.Context, q kickapi.Query) (NormalizedProfile, error) {
	tok, err := s.Tokens.Get(ctx)
	if err != nil {
		return NormalizedProfile{}, err
	}

	rec, err := s.Channels.FetchChannel(ctx, q, tok)
	if apperr.IsKind(err, apperr.KindAuth) {
		telemetry.CountAuthRetry()
		s.Tokens.Invalidate()
		if tok, err = s.Tokens.Get(ctx); err != nil {
			return NormalizedProfile{}, err
		}
		rec, err = s.Channels.FetchChannel(ctx, q, tok)
	}
	if err != nil {
		return NormalizedProfile{}, err
	}

	return Normalize(rec, q.Slug, s.clock()), nil
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
