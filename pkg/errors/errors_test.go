package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "p-42")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "p-42")
}

func TestUnauthenticated(t *testing.T) {
	err := Unauthenticated("sign in to check out")

	assert.Equal(t, "UNAUTHENTICATED", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNoValidItems(t *testing.T) {
	err := NoValidItems("cart has no valid items")

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrNoValidItems)
}

func TestUpstream_PassesStatusThrough(t *testing.T) {
	err := Upstream(http.StatusUnprocessableEntity, "out of stock")

	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "out of stock", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
}

func TestUnavailable_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Unavailable("commerce api unreachable", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrNoValidItems, http.StatusBadRequest},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err))
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	err := Wrap(ErrNotFound, "resolve product")
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
