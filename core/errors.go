package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ErrorKind classifies a failed backend call. It is assigned once, when the
// response is received, so downstream code never re-parses response shapes.
type ErrorKind int

const (
	ErrKindNetwork ErrorKind = iota + 1 // request never produced a response
	ErrKindValidation
	ErrKindUnauthorized
	ErrKindForbidden
	ErrKindNotFound
	ErrKindServer
)

// APIError is the single normalized error type for every failed backend
// call. Message holds the best-effort human-readable text extracted from the
// response body (`message`, then `msg`, then the HTTP status text).
type APIError struct {
	Kind       ErrorKind
	StatusCode int // 0 for network failures
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s (%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewNetworkError wraps a transport-level failure (no response received).
func NewNetworkError(err error) *APIError {
	return &APIError{
		Kind:    ErrKindNetwork,
		Message: "could not reach the server",
		Err:     errors.Wrap(err, "network failure"),
	}
}

// NewAPIError builds an APIError from an HTTP status and an extracted
// message, falling back to the status text when the body carried none.
func NewAPIError(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrKindUnauthorized
	case status == http.StatusForbidden:
		kind = ErrKindForbidden
	case status == http.StatusNotFound:
		kind = ErrKindNotFound
	case status >= 500:
		kind = ErrKindServer
	case status >= 400:
		kind = ErrKindValidation
	default:
		kind = ErrKindServer
	}
	return &APIError{Kind: kind, StatusCode: status, Message: message}
}

func apiErrorKind(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func IsUnauthorized(err error) bool { return apiErrorKind(err) == ErrKindUnauthorized }
func IsForbidden(err error) bool    { return apiErrorKind(err) == ErrKindForbidden }
func IsNotFound(err error) bool     { return apiErrorKind(err) == ErrKindNotFound }

// ErrorMessage extracts a message for display using the fixed precedence:
// backend message, generic error message, hardcoded fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
