// Package config loads environment variables and provides a typed Config used
// across the service. It applies sensible defaults so the binary can run
// locally with minimal setup; for the required Kick credentials, use
// ValidateCredentials at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Kick
	KickClientID     string
	KickClientSecret string

	// HTTP
	HTTPAddr string

	// Upstream behavior
	UpstreamTimeout   time.Duration
	TokenSafetyMargin time.Duration
}

// Load reads environment variables and applies defaults. It doesn't fail if
// Kick creds are missing; use ValidateCredentials() before serving, since a
// proxy without credentials can never answer a request.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.KickClientID = os.Getenv("KICK_CLIENT_ID")
	cfg.KickClientSecret = os.Getenv("KICK_CLIENT_SECRET")

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.UpstreamTimeout = 5 * time.Second
	if v := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT_SECONDS: %q", v)
		}
		cfg.UpstreamTimeout = time.Duration(n) * time.Second
	}

	cfg.TokenSafetyMargin = 30 * time.Second
	if v := os.Getenv("TOKEN_SAFETY_MARGIN_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid TOKEN_SAFETY_MARGIN_SECONDS: %q", v)
		}
		cfg.TokenSafetyMargin = time.Duration(n) * time.Second
	}

	return cfg, nil
}

// ValidateCredentials checks the required Kick client credentials. Their
// absence is a startup-fatal condition, not a per-request error.
func (c *Config) ValidateCredentials() error {
	if c.KickClientID == "" || c.KickClientSecret == "" {
		return fmt.Errorf("missing kick env: require KICK_CLIENT_ID, KICK_CLIENT_SECRET")
	}
	return nil
}
