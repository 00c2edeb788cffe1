package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is the kind of every malformed-input failure.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is the kind returned when a caller has no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is the kind returned when an identity lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the kind returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the kind returned when a uniqueness rule would be broken.
	ErrConflict = errors.New("conflict")
	// ErrStore is the kind of every underlying persistence failure.
	ErrStore = errors.New("store failure")
)

// Error is a domain error: a kind sentinel, a message safe to show to callers and an optional cause.
type Error struct {
	kind    error
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Kind returns the sentinel the error was built with.
func (e *Error) Kind() error {
	return e.kind
}

// Cause returns the wrapped underlying error, if any.
func (e *Error) Cause() error {
	return e.cause
}

func newError(kind error, message string, cause error) *Error {
	return &Error{kind: kind, Message: message, cause: cause}
}

// Validation builds an ErrValidation error.
func Validation(message string) *Error { return newError(ErrValidation, message, nil) }

// Unauthenticated builds an ErrUnauthenticated error.
func Unauthenticated(message string) *Error { return newError(ErrUnauthenticated, message, nil) }

// Forbidden builds an ErrForbidden error.
func Forbidden(message string) *Error { return newError(ErrForbidden, message, nil) }

// NotFound builds an ErrNotFound error.
func NotFound(message string) *Error { return newError(ErrNotFound, message, nil) }

// Conflict builds an ErrConflict error.
func Conflict(message string) *Error { return newError(ErrConflict, message, nil) }

// Store wraps a persistence failure.
func Store(message string, cause error) *Error { return newError(ErrStore, message, cause) }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Store causes are only exposed when debug is set.
func MapErrorToHTTP(err error, debug bool) *HTTPError {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		httpErr := NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
		if debug && err != nil {
			httpErr.Details = err.Error()
		}
		return httpErr
	}

	switch domainErr.kind {
	case ErrValidation:
		return NewHTTPError(http.StatusBadRequest, domainErr.Message, "VALIDATION_ERROR")
	case ErrUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, domainErr.Message, "UNAUTHENTICATED")
	case ErrForbidden:
		return NewHTTPError(http.StatusForbidden, domainErr.Message, "FORBIDDEN")
	case ErrNotFound:
		return NewHTTPError(http.StatusNotFound, domainErr.Message, "NOT_FOUND")
	case ErrConflict:
		return NewHTTPError(http.StatusBadRequest, domainErr.Message, "CONFLICT")
	default:
		httpErr := NewHTTPError(http.StatusInternalServerError, domainErr.Message, "STORE_ERROR")
		if debug && domainErr.cause != nil {
			httpErr.Details = domainErr.cause.Error()
		}
		return httpErr
	}
}
