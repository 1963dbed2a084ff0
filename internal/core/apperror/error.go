// Package apperror defines the errors the ledger API returns to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeTimeout     = "TIMEOUT_ERROR"
	CodeFetchFailed = "FETCH_FAILED"

	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"

	// Warning-only codes, attached to report payloads and never returned as errors.
	CodeMissingReference = "MISSING_REFERENCE"
	CodeMalformedRecord  = "MALFORMED_RECORD"
)

// AppError is a client-facing failure. Code, Message and Details are
// serialized; Err stays server side.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail sets Details[key] and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewValidation reports a malformed request (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInsufficientStock is returned when a usage exceeds the current quantity.
func NewInsufficientStock(entityID string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"entity_id": entityID,
			"requested": requested,
			"available": available,
		},
	}
}

// NewFetchFailed wraps an upstream read failure. The whole report section
// fails; it is never rendered as empty data.
func NewFetchFailed(table string, err error) *AppError {
	return &AppError{
		Code:       CodeFetchFailed,
		Message:    fmt.Sprintf("failed to fetch %s", table),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"table": table},
		Err:        err,
	}
}

// NewTimeout reports that op ran past its deadline (504).
func NewTimeout(op string, err error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    fmt.Sprintf("%s timed out", op),
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

// NewInternal hides err behind a generic 500.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the status err maps to; 500 for foreign errors.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsFetchFailed checks if error is CodeFetchFailed.
func IsFetchFailed(err error) bool {
	return hasCode(err, CodeFetchFailed)
}

// IsInsufficientStock checks if error is CodeInsufficientStock.
func IsInsufficientStock(err error) bool {
	return hasCode(err, CodeInsufficientStock)
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
