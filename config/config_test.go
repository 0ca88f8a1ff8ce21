package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KICK_CLIENT_ID", "")
	t.Setenv("KICK_CLIENT_SECRET", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "")
	t.Setenv("TOKEN_SAFETY_MARGIN_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 5s", cfg.UpstreamTimeout)
	}
	if cfg.TokenSafetyMargin != 30*time.Second {
		t.Errorf("TokenSafetyMargin = %v, want 30s", cfg.TokenSafetyMargin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KICK_CLIENT_ID", "id")
	t.Setenv("KICK_CLIENT_SECRET", "secret")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "15")
	t.Setenv("TOKEN_SAFETY_MARGIN_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KickClientID != "id" || cfg.KickClientSecret != "secret" {
		t.Error("credentials not read from env")
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 15s", cfg.UpstreamTimeout)
	}
	if cfg.TokenSafetyMargin != 60*time.Second {
		t.Errorf("TokenSafetyMargin = %v, want 60s", cfg.TokenSafetyMargin)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric timeout", key: "UPSTREAM_TIMEOUT_SECONDS", value: "abc"},
		{name: "zero timeout", key: "UPSTREAM_TIMEOUT_SECONDS", value: "0"},
		{name: "negative timeout", key: "UPSTREAM_TIMEOUT_SECONDS", value: "-1"},
		{name: "non-numeric margin", key: "TOKEN_SAFETY_MARGIN_SECONDS", value: "soon"},
		{name: "negative margin", key: "TOKEN_SAFETY_MARGIN_SECONDS", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "")
			t.Setenv("TOKEN_SAFETY_MARGIN_SECONDS", "")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() = nil error with %s=%q, want error", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_ZeroMarginAllowed(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "")
	t.Setenv("TOKEN_SAFETY_MARGIN_SECONDS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TokenSafetyMargin != 0 {
		t.Errorf("TokenSafetyMargin = %v, want 0", cfg.TokenSafetyMargin)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "both set", cfg: Config{KickClientID: "id", KickClientSecret: "secret"}},
		{name: "missing secret", cfg: Config{KickClientID: "id"}, wantErr: true},
		{name: "missing id", cfg: Config{KickClientSecret: "secret"}, wantErr: true},
		{name: "both missing", cfg: Config{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateCredentials()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
