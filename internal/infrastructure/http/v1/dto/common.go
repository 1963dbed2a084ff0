// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
)

// ErrorResponse mirrors the body written by middleware.ErrorHandler.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseDate accepts YYYY-MM-DD (interpreted in loc) or RFC3339.
// An empty value yields nil.
func ParseDate(field, value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperror.NewValidation("invalid "+field+" format, expected YYYY-MM-DD or RFC3339").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return &t, nil
}

// ParseOptionalID parses an optional identifier where "" and "all" mean
// no restriction.
func ParseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.NewValidation("invalid "+field).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return v, nil
}

// ParseRequiredID parses a mandatory identifier.
func ParseRequiredID(field, value string) (id.ID, error) {
	v, err := id.Parse(strings.TrimSpace(value))
	if err != nil || id.IsNil(v) {
		return id.Nil(), apperror.NewValidation("invalid "+field).
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return v, nil
}
