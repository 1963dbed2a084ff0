package dto

import (
	"strings"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
)

// CurrentStockRequest selects the kind and branch of a current stock listing.
type CurrentStockRequest struct {
	Kind     string `form:"kind" binding:"required"`
	BranchID string `form:"branchId"`
}

// Parse validates the request.
func (r CurrentStockRequest) Parse() (ledger.EntityKind, *id.ID, error) {
	kind, err := ledger.ParseEntityKind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if err != nil {
		return "", nil, apperror.NewValidation(err.Error()).WithDetail("field", "kind")
	}
	branchID, err := ParseOptionalID("branchId", r.BranchID)
	if err != nil {
		return "", nil, err
	}
	return kind, branchID, nil
}

// UsageCheckRequest asks whether a branch holds enough of a material.
// Quantity accepts a JSON number or string.
type UsageCheckRequest struct {
	MaterialID string         `json:"materialId" binding:"required"`
	BranchID   string         `json:"branchId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
}

// Parse validates identifiers. The quantity is checked by the service.
func (r UsageCheckRequest) Parse() (materialID, branchID id.ID, err error) {
	if materialID, err = ParseRequiredID("materialId", r.MaterialID); err != nil {
		return
	}
	branchID, err = ParseRequiredID("branchId", r.BranchID)
	return
}

// CacheBumpResponse reports the report cache version after a bump.
type CacheBumpResponse struct {
	Version int64 `json:"version"`
	Enabled bool  `json:"enabled"`
}
