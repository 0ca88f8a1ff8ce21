// Package server exposes the HTTP API handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/kick-profile/backend/apperr"
	"github.com/onnwee/kick-profile/backend/kickapi"
	"github.com/onnwee/kick-profile/backend/profile"
	"github.com/onnwee/kick-profile/backend/telemetry"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	svc *profile.Service
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(svc *profile.Service) *Handlers {
	return &Handlers{svc: svc}
}

// errorResponse is the error body served for every failed request. The error
// string is a stable label derived from the error kind; details carries the
// classified message, never a raw upstream body.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleRoot answers a plain liveness banner on the bare path.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("kick profile backend is up and running"))
}

// HandleProfile serves GET /profile?slug=... | broadcaster_user_id=...
func (h *Handlers) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	q := kickapi.Query{Slug: strings.TrimSpace(r.URL.Query().Get("slug"))}
	if v := r.URL.Query().Get("broadcaster_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: "broadcaster_user_id must be a positive integer"})
			return
		}
		q.BroadcasterID = id
	}

	prof, err := h.svc.GetProfile(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

// HandleHealthz responds to liveness probe requests.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests. The service is ready
// when it can obtain an app access token from Kick.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"kick_auth", func() error {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			_, err := h.svc.Tokens.Get(ctx)
			return err
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// errorLabel maps an error kind to the stable error string in the response
// body.
func errorLabel(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return "invalid request"
	case apperr.KindAuth:
		return "authentication with kick failed"
	case apperr.KindNotFound:
		return "channel not found"
	case apperr.KindUpstream:
		return "upstream request failed"
	default:
		return "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	if status >= 500 {
		telemetry.LoggerWithCorr(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path), slog.String("kind", kind.String()), slog.Any("err", err))
	} else {
		telemetry.LoggerWithCorr(r.Context()).Info("request rejected",
			slog.String("path", r.URL.Path), slog.String("kind", kind.String()), slog.Any("err", err))
	}

	body := errorResponse{Error: errorLabel(kind)}
	var e *apperr.Error
	if errors.As(err, &e) {
		body.Details = e.Message
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.Any("err", err))
	}
}
