package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidArgument, ErrBackendRejected, ErrTransport,
		ErrUnauthorized, ErrNotFound,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	appErr := &AppError{Code: "TRANSPORT_FAILURE", Message: "backend unreachable", Err: inner}
	assert.Contains(t, appErr.Error(), "TRANSPORT_FAILURE")
	assert.Contains(t, appErr.Error(), "backend unreachable")
	assert.Contains(t, appErr.Error(), "connection reset")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

// --- Constructor functions ---

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("product reference must be a positive number")
	require.NotNil(t, err)
	assert.Equal(t, "INVALID_ARGUMENT", err.Code)
	assert.Equal(t, "product reference must be a positive number", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestBackendRejected_KeepsMessageVerbatim(t *testing.T) {
	err := BackendRejected(http.StatusConflict, "You cannot add that amount to the cart")
	require.NotNil(t, err)
	assert.Equal(t, "BACKEND_REJECTED", err.Code)
	assert.Equal(t, "You cannot add that amount to the cart", err.Message)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrBackendRejected))
}

func TestBackendRejected_NonErrorStatusFallsBackToBadGateway(t *testing.T) {
	err := BackendRejected(0, "weird")
	assert.Equal(t, http.StatusBadGateway, err.Status)
}

func TestTransportFailure(t *testing.T) {
	inner := fmt.Errorf("dial tcp: connection refused")
	err := TransportFailure(inner)
	require.NotNil(t, err)
	assert.Equal(t, "TRANSPORT_FAILURE", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("invalid token")
	require.NotNil(t, err)
	assert.Equal(t, "UNAUTHORIZED", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "42")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "42")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get product")
	assert.Contains(t, wrapped.Error(), "get product")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

// --- HTTPStatus ---

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(BackendRejected(http.StatusConflict, "nope")))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrInvalidArgument, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrTransport, http.StatusBadGateway},
		{ErrBackendRejected, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrInvalidArgument)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
