package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBackendRejected = errors.New("backend rejected request")
	ErrTransport       = errors.New("transport failure")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("resource not found")
)

// AppError represents a structured application error with HTTP status mapping.
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

// InvalidArgument creates a 400 error for caller-supplied bad input.
// Raised before any network call is issued; never retried.
func InvalidArgument(message string) *AppError {
	return &AppError{
		Code:    "INVALID_ARGUMENT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidArgument,
	}
}

// BackendRejected creates an error carrying the cart backend's own status and
// message. The message is surfaced verbatim to the caller.
func BackendRejected(status int, message string) *AppError {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &AppError{
		Code:    "BACKEND_REJECTED",
		Message: message,
		Status:  status,
		Err:     ErrBackendRejected,
	}
}

// TransportFailure creates a 502 error for a network failure or a malformed
// response body from the backend.
func TransportFailure(err error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_FAILURE",
		Message: "cart backend is unreachable",
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
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
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTransport), errors.Is(err, ErrBackendRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
