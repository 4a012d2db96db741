// Package domainerrors provides typed domain errors with stable codes.
// Services wrap low-level errors with a code; the transport layer maps
// codes to HTTP statuses without inspecting error internals.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for propagation and HTTP mapping.
type Code string

const (
	// CodeUnauthorized: missing or unresolvable caller credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeRateLimited: the caller exceeded its per-minute quota.
	CodeRateLimited Code = "rate_limited"
	// CodeNoSearchParameters: the query supplied no identifying fields at all.
	CodeNoSearchParameters Code = "no_search_parameters"
	// CodeMissingRequired: name, city or state is absent from the query.
	CodeMissingRequired Code = "missing_required_parameters"
	// CodeEmbeddingFailed: the mandatory combined embedding could not be produced.
	CodeEmbeddingFailed Code = "embedding_failed"
	// CodeArbitrationFailed: the model response was unparseable or named an
	// unknown candidate.
	CodeArbitrationFailed Code = "arbitration_failed"
	// CodeAuditWriteFailed: the ledger rejected the decision record after the
	// decision was already made.
	CodeAuditWriteFailed Code = "audit_write_failed"
	// CodeUnavailable: a backend (search, ledger count, embedding endpoint)
	// is unreachable.
	CodeUnavailable Code = "upstream_unavailable"

	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeNoSearchParameters, CodeMissingRequired, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeEmbeddingFailed, CodeArbitrationFailed:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
