package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetchFailed(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchFailed("damaged_materials", cause)

	assert.Equal(t, CodeFetchFailed, err.Code)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.Equal(t, "damaged_materials", err.Details["table"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("stock summary: %w", NewInsufficientStock("m-1", "5.0000", "2.0000"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientStock, appErr.Code)
	assert.True(t, IsInsufficientStock(wrapped))
	assert.False(t, IsFetchFailed(wrapped))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad range").WithDetail("from", "2024-02-01")
	assert.Equal(t, "2024-02-01", err.Details["from"])
	assert.Equal(t, "VALIDATION_ERROR: bad range", err.Error())
}
