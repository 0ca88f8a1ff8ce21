// Package apperr defines the closed error taxonomy shared by the Kick API
// clients, the profile service, and the HTTP boundary. Errors carry a Kind
// so the boundary can map them to status codes without string matching.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error into one of the failure categories the service
// distinguishes.
type Kind int

const (
	// KindInternal is the defensive catch-all for unclassified failures.
	KindInternal Kind = iota
	// KindValidation covers bad or missing caller input.
	KindValidation
	// KindAuth covers credential or token failures against Kick.
	KindAuth
	// KindNotFound means upstream reported no matching channel.
	KindNotFound
	// KindUpstream covers upstream 5xx, malformed bodies, and transport or
	// timeout failures.
	KindUpstream
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code the boundary serves.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a classified error wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the kind from err, or KindInternal when err is not a
// classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
