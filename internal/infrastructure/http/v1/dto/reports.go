package dto

import (
	"strings"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
)

// ReportFilterRequest is the query string shared by every report endpoint.
type ReportFilterRequest struct {
	From      string `form:"from"`
	To        string `form:"to"`
	BranchID  string `form:"branchId"`
	ProductID string `form:"productId"`
	Basis     string `form:"basis"`
}

// ToFilter converts the request into a report filter. Date-only values
// are read in loc.
func (r ReportFilterRequest) ToFilter(loc *time.Location) (reports.Filter, error) {
	var (
		f   reports.Filter
		err error
	)
	if f.From, err = ParseDate("from", r.From, loc); err != nil {
		return f, err
	}
	if f.To, err = ParseDate("to", r.To, loc); err != nil {
		return f, err
	}
	if f.BranchID, err = ParseOptionalID("branchId", r.BranchID); err != nil {
		return f, err
	}
	if f.ProductID, err = ParseOptionalID("productId", r.ProductID); err != nil {
		return f, err
	}
	if b := strings.TrimSpace(r.Basis); b != "" {
		basis, err := ledger.ParseBasis(strings.ToLower(b))
		if err != nil {
			return f, apperror.NewValidation(err.Error()).WithDetail("field", "basis")
		}
		f.Basis = basis
	}
	return f, f.Validate()
}
