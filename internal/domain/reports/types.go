package reports

import (
	"strings"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
)

// Filter is the user-facing filter state of a report.
type Filter struct {
	From      *time.Time
	To        *time.Time
	BranchID  *id.ID // nil = all branches
	ProductID *id.ID // restricts sales lines
	Basis     ledger.Basis
}

// Validate rejects inverted ranges and unknown bases.
func (f Filter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperror.NewValidation("from must be before to").
			WithDetail("from", f.From.Format(time.DateOnly)).
			WithDetail("to", f.To.Format(time.DateOnly))
	}
	if f.Basis != "" {
		if _, err := ledger.ParseBasis(string(f.Basis)); err != nil {
			return apperror.NewValidation(err.Error())
		}
	}
	return nil
}

func (f Filter) branch() ledger.BranchFilter {
	if f.BranchID == nil {
		return ledger.AllBranches
	}
	return ledger.OnlyBranch(*f.BranchID)
}

func (f Filter) rng() ledger.Range {
	return ledger.Range{From: f.From, To: f.To}
}

// cacheParts renders the full filter tuple for cache keys.
func (f Filter) cacheParts(report string, basis ledger.Basis) []string {
	return []string{
		"ledger", report,
		idToken(f.BranchID),
		idToken(f.ProductID),
		timeToken(f.From),
		timeToken(f.To),
		string(basis),
	}
}

func idToken(v *id.ID) string {
	if v == nil {
		return "all"
	}
	return v.String()
}

func timeToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return strings.ReplaceAll(t.UTC().Format(time.RFC3339Nano), ":", "")
}

// StockSummary is the stock movement table of the accounts screen.
type StockSummary struct {
	From      *time.Time          `json:"from,omitempty"`
	To        *time.Time          `json:"to,omitempty"`
	BranchID  *id.ID              `json:"branchId,omitempty"`
	Basis     ledger.Basis        `json:"basis"`
	Materials ledger.RangeReport  `json:"materials"`
	Products  ledger.RangeReport  `json:"products"`
	Combined  ledger.StockFigures `json:"combined"`
}

// RatioStatus colours a cost ratio.
type RatioStatus string

const (
	StatusGreen RatioStatus = "green"
	StatusRed   RatioStatus = "red"
)

// AccountMetrics are the headline profit figures plus their colouring.
type AccountMetrics struct {
	ledger.Metrics
	RatioStatus   RatioStatus   `json:"ratioStatus"`
	Threshold     types.Money   `json:"threshold"`
	CostBreakdown CostBreakdown `json:"costBreakdown"`
}

// CostBreakdown itemises the cost buckets folded into AccountMetrics.Cost.
type CostBreakdown struct {
	Sales            types.Money `json:"sales"`
	Complimentary    types.Money `json:"complimentary"`
	ProductDamages   types.Money `json:"productDamages"`
	MaterialDamages  types.Money `json:"materialDamages"`
	Imprest          types.Money `json:"imprest"`
	IndirectMaterial types.Money `json:"indirectMaterial"`
}

// BranchReport ranks branches by profit.
type BranchReport struct {
	Branches  []ledger.BranchMetrics `json:"branches"`
	Threshold types.Money            `json:"threshold"`
}

// ProductReport lists per-product cost ratios and sales volume.
type ProductReport struct {
	Products  []ledger.ProductMetrics `json:"products"`
	Volume    []ledger.VolumeLine     `json:"volume"`
	Threshold types.Money             `json:"threshold"`
}

// CurrentStock lists current quantities for one kind.
type CurrentStock struct {
	Kind     ledger.EntityKind  `json:"kind"`
	BranchID *id.ID             `json:"branchId,omitempty"`
	Lines    []ledger.StockLine `json:"lines"`
	LowStock int                `json:"lowStock"`
}

// UsageCheck is the outcome of a successful availability check.
type UsageCheck struct {
	MaterialID id.ID          `json:"materialId"`
	BranchID   id.ID          `json:"branchId"`
	Requested  types.Quantity `json:"requested"`
	Available  types.Quantity `json:"available"`
	Remaining  types.Quantity `json:"remaining"`
}
