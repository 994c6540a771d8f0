package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront error taxonomy.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNoValidItems    = errors.New("no valid items")
	ErrUnavailable     = errors.New("upstream unavailable")
	ErrInternal        = errors.New("internal error")
)

// AppError is a structured application error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error. Product lookups treat this as an absence,
// not a failure.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthenticated creates a 401 error. Checkout requires an identity; the
// caller is expected to obtain one and retry.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHENTICATED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// NoValidItems creates a 400 error for a checkout attempt with an empty
// valid line-item set.
func NoValidItems(message string) *AppError {
	return &AppError{
		Code:    "NO_VALID_ITEMS",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrNoValidItems,
	}
}

// Unavailable creates a 503 error for a transport-level upstream failure.
func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "UPSTREAM_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     errors.Join(ErrUnavailable, err),
	}
}

// Upstream creates an error that passes an upstream status through with a
// human-readable message extracted from the upstream response.
func Upstream(status int, message string) *AppError {
	return &AppError{
		Code:    "UPSTREAM_ERROR",
		Message: message,
		Status:  status,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     errors.Join(ErrInternal, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoValidItems):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
