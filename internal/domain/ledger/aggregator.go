package ledger

import (
	"slices"
	"strings"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// BranchFilter restricts aggregation to one branch. The zero value matches
// all branches.
type BranchFilter struct {
	branch *id.ID
}

// AllBranches matches every branch.
var AllBranches = BranchFilter{}

func OnlyBranch(branchID id.ID) BranchFilter {
	return BranchFilter{branch: &branchID}
}

func (f BranchFilter) All() bool { return f.branch == nil }

// ID returns the selected branch, or nil for all branches.
func (f BranchFilter) ID() *id.ID { return f.branch }

func (f BranchFilter) Matches(branchID id.ID) bool {
	return f.branch == nil || *f.branch == branchID
}

func (f BranchFilter) String() string {
	if f.branch == nil {
		return "all"
	}
	return f.branch.String()
}

// StockFigures is one set of range quantities and their monetary values.
type StockFigures struct {
	Opening      types.Quantity `json:"opening"`
	Closing      types.Quantity `json:"closing"`
	Damages      types.Quantity `json:"damages"`
	StockIn      types.Quantity `json:"stockIn"`
	TransfersOut types.Quantity `json:"transfersOut"`

	OpeningValue      types.Money `json:"openingValue"`
	ClosingValue      types.Money `json:"closingValue"`
	DamagesValue      types.Money `json:"damagesValue"`
	StockInValue      types.Money `json:"stockInValue"`
	TransfersOutValue types.Money `json:"transfersOutValue"`
}

// Add returns the element-wise sum of f and o.
func (f StockFigures) Add(o StockFigures) StockFigures {
	return StockFigures{
		Opening:           f.Opening + o.Opening,
		Closing:           f.Closing + o.Closing,
		Damages:           f.Damages + o.Damages,
		StockIn:           f.StockIn + o.StockIn,
		TransfersOut:      f.TransfersOut + o.TransfersOut,
		OpeningValue:      f.OpeningValue.Add(o.OpeningValue),
		ClosingValue:      f.ClosingValue.Add(o.ClosingValue),
		DamagesValue:      f.DamagesValue.Add(o.DamagesValue),
		StockInValue:      f.StockInValue.Add(o.StockInValue),
		TransfersOutValue: f.TransfersOutValue.Add(o.TransfersOutValue),
	}
}

func (f StockFigures) priced(price types.Money) StockFigures {
	f.OpeningValue = f.Opening.Value(price)
	f.ClosingValue = f.Closing.Value(price)
	f.DamagesValue = f.Damages.Value(price)
	f.StockInValue = f.StockIn.Value(price)
	f.TransfersOutValue = f.TransfersOut.Value(price)
	return f
}

// RangeSummary is the movement summary of one (entity, branch) pair.
type RangeSummary struct {
	Kind       EntityKind  `json:"kind"`
	EntityID   id.ID       `json:"entityId"`
	EntityName string      `json:"entityName"`
	BranchID   id.ID       `json:"branchId"`
	UnitPrice  types.Money `json:"unitPrice"`
	PriceKnown bool        `json:"priceKnown"`
	StockFigures
}

func (s RangeSummary) Pair() Pair {
	return Pair{EntityID: s.EntityID, BranchID: s.BranchID}
}

// Warning is a non-fatal data problem surfaced next to report figures.
type Warning struct {
	Code     string     `json:"code"`
	Kind     EntityKind `json:"kind,omitempty"`
	EntityID id.ID      `json:"entityId"`
	Message  string     `json:"message"`
}

// RangeReport is the output of one aggregation.
type RangeReport struct {
	Kind      EntityKind     `json:"kind"`
	Basis     Basis          `json:"basis"`
	Summaries []RangeSummary `json:"summaries"`
	Total     StockFigures   `json:"total"`
	// Omitted lists pairs that have movements but no opening-stock row.
	// They are excluded from Summaries and Total.
	Omitted  []Pair    `json:"omitted,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Merge appends o to r, summing totals. Used to build a combined
// material and product view.
func (r RangeReport) Merge(o RangeReport) RangeReport {
	out := RangeReport{
		Kind:      r.Kind,
		Basis:     r.Basis,
		Summaries: append(slices.Clone(r.Summaries), o.Summaries...),
		Total:     r.Total.Add(o.Total),
		Omitted:   append(slices.Clone(r.Omitted), o.Omitted...),
		Warnings:  append(slices.Clone(r.Warnings), o.Warnings...),
	}
	if r.Kind != o.Kind {
		out.Kind = ""
	}
	return out
}

// Aggregator builds range summaries for one entity kind.
type Aggregator struct {
	kind   EntityKind
	prices PriceSource
	basis  Basis
}

func NewAggregator(kind EntityKind, prices PriceSource, basis Basis) *Aggregator {
	return &Aggregator{kind: kind, prices: prices, basis: basis}
}

// AggregateRange summarises records of the aggregator's kind per (entity,
// branch) pair.
//
// Pairs are anchored by opening-stock rows: a pair without one is reported in
// Omitted. Opening resolves against opening rows at the window start.
// Closing resolves at the window end against the pair's closing-stock rows,
// or, when it has none, against every row of the pair that stores a running
// balance. Damages, stock-in and transfers-out sum flow rows inside the
// window.
func (a *Aggregator) AggregateRange(records []Record, branch BranchFilter, w Window) RangeReport {
	report := RangeReport{Kind: a.kind, Basis: a.basis, Summaries: []RangeSummary{}}

	var opening, closing, flows []Record
	for _, r := range records {
		h := r.Head()
		if h.Kind != a.kind || !branch.Matches(h.BranchID) {
			continue
		}
		switch h.Category {
		case CategoryOpening:
			opening = append(opening, r)
		case CategoryClosing:
			closing = append(closing, r)
		default:
			flows = append(flows, r)
		}
	}

	openingByPair := GroupByPair(opening)
	closingByPair := GroupByPair(closing)
	flowsByPair := GroupByPair(flows)

	omitted := make(map[Pair]struct{})
	for _, groups := range []map[Pair][]Record{closingByPair, flowsByPair} {
		for p := range groups {
			if _, anchored := openingByPair[p]; !anchored {
				omitted[p] = struct{}{}
			}
		}
	}

	resolver := NewResolver()
	warned := make(map[id.ID]bool)

	for pair, anchor := range openingByPair {
		var fig StockFigures
		if w.Start != nil {
			fig.Opening = resolver.Resolve(pair, anchor, w.Start, ModeOpening)
		} else {
			fig.Opening = HistoryStart(anchor)
		}
		fig.Closing = resolver.Resolve(pair, closingSource(anchor, closingByPair[pair], flowsByPair[pair]), w.End, ModeClosing)

		var inWindow []Record
		for _, f := range flowsByPair[pair] {
			if w.Contains(f.Head().CreatedAt) {
				inWindow = append(inWindow, f)
			}
		}
		fig.Damages = Accumulate(inWindow, DamageSigns)
		fig.StockIn = Accumulate(inWindow, StockInSigns)
		fig.TransfersOut = Accumulate(inWindow, TransferOutSigns)

		price, known := a.prices.PriceOf(pair.EntityID, a.kind, a.basis)
		if !known && !warned[pair.EntityID] {
			warned[pair.EntityID] = true
			report.Warnings = append(report.Warnings, MissingPriceWarning(a.kind, pair.EntityID, a.basis))
		}

		report.Summaries = append(report.Summaries, RangeSummary{
			Kind:         a.kind,
			EntityID:     pair.EntityID,
			EntityName:   a.prices.NameOf(pair.EntityID, a.kind),
			BranchID:     pair.BranchID,
			UnitPrice:    price,
			PriceKnown:   known,
			StockFigures: fig.priced(price),
		})
	}

	slices.SortFunc(report.Summaries, func(x, y RangeSummary) int {
		if c := strings.Compare(x.EntityName, y.EntityName); c != 0 {
			return c
		}
		return comparePairs(x.Pair(), y.Pair())
	})
	for _, s := range report.Summaries {
		report.Total = report.Total.Add(s.StockFigures)
	}

	for p := range omitted {
		report.Omitted = append(report.Omitted, p)
	}
	slices.SortFunc(report.Omitted, comparePairs)
	slices.SortFunc(report.Warnings, func(x, y Warning) int {
		return strings.Compare(x.EntityID.String(), y.EntityID.String())
	})
	return report
}

// closingSource picks the rows closing stock is read from.
func closingSource(anchor, closing, flows []Record) []Record {
	if len(closing) > 0 {
		return closing
	}
	history := slices.Clone(anchor)
	for _, f := range flows {
		if f.HasRunningBalance() {
			history = append(history, f)
		}
	}
	return history
}

// MissingPriceWarning reports an entity valued at zero for lack of a price.
func MissingPriceWarning(kind EntityKind, entityID id.ID, basis Basis) Warning {
	return Warning{
		Code:     apperror.CodeMissingReference,
		Kind:     kind,
		EntityID: entityID,
		Message:  "no " + string(basis) + " price for " + string(kind) + " " + entityID.String() + ", valued at 0",
	}
}
