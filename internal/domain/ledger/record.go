package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// Pair identifies one (entity, branch) ledger group.
type Pair struct {
	EntityID id.ID `json:"entityId"`
	BranchID id.ID `json:"branchId"`
}

func (p Pair) String() string {
	return p.EntityID.String() + "@" + p.BranchID.String()
}

func comparePairs(a, b Pair) int {
	if c := id.Compare(a.EntityID, b.EntityID); c != 0 {
		return c
	}
	return id.Compare(a.BranchID, b.BranchID)
}

// Header holds the fields every movement row carries regardless of category.
type Header struct {
	// RowID is the source row's primary key; it orders rows sharing a timestamp.
	RowID     id.ID      `json:"rowId"`
	Kind      EntityKind `json:"kind"`
	EntityID  id.ID      `json:"entityId"`
	BranchID  id.ID      `json:"branchId"`
	Category  Category   `json:"category"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (h Header) Pair() Pair {
	return Pair{EntityID: h.EntityID, BranchID: h.BranchID}
}

func (h Header) validate() error {
	if !h.Kind.Valid() {
		return fmt.Errorf("invalid entity kind %q", h.Kind)
	}
	if !h.Category.Valid() {
		return fmt.Errorf("invalid category %q", h.Category)
	}
	return nil
}

// Record is one movement row. It is either a StockLevel (snapshot
// categories) or a Flow (every other category).
type Record interface {
	Head() Header
	// Magnitude is the unsigned quantity the row contributes to a sum.
	Magnitude() types.Quantity
	// RunningBalance is the stock level the data source stored for the
	// entity after this row was written.
	RunningBalance() types.Quantity
	// HasRunningBalance is false for flows written without a balance column.
	HasRunningBalance() bool

	isRecord()
}

// StockLevel is a snapshot row: an inventory (opening) or closing-stock row
// whose quantity is a stored stock count rather than a delta.
type StockLevel struct {
	Header
	Quantity     types.Quantity  `json:"quantity"`
	OpeningStock *types.Quantity `json:"openingStock,omitempty"`
	ClosingStock *types.Quantity `json:"closingStock,omitempty"`
}

// NewStockLevel builds a snapshot row. The category must be opening or closing.
func NewStockLevel(h Header, quantity types.Quantity, openingStock, closingStock *types.Quantity) (StockLevel, error) {
	if err := h.validate(); err != nil {
		return StockLevel{}, err
	}
	if !h.Category.IsSnapshot() {
		return StockLevel{}, fmt.Errorf("category %q is a flow, not a stock level", h.Category)
	}
	return StockLevel{
		Header:       h,
		Quantity:     quantity,
		OpeningStock: openingStock,
		ClosingStock: closingStock,
	}, nil
}

func (s StockLevel) Head() Header                   { return s.Header }
func (s StockLevel) Magnitude() types.Quantity      { return s.Quantity }
func (s StockLevel) RunningBalance() types.Quantity { return s.Quantity }
func (s StockLevel) HasRunningBalance() bool        { return true }
func (StockLevel) isRecord()                        {}

// Flow is a movement delta: receipts, transfers, usage, damages, sales and
// complimentary issues.
type Flow struct {
	Header
	Quantity types.Quantity  `json:"quantity"`
	Cost     *types.Money    `json:"cost,omitempty"`
	Balance  *types.Quantity `json:"balance,omitempty"`
}

// NewFlow builds a movement row. The category must not be a snapshot category.
func NewFlow(h Header, quantity types.Quantity, cost *types.Money, balance *types.Quantity) (Flow, error) {
	if err := h.validate(); err != nil {
		return Flow{}, err
	}
	if h.Category.IsSnapshot() {
		return Flow{}, fmt.Errorf("category %q is a stock level, not a flow", h.Category)
	}
	return Flow{
		Header:   h,
		Quantity: quantity.Abs(),
		Cost:     cost,
		Balance:  balance,
	}, nil
}

func (f Flow) Head() Header              { return f.Header }
func (f Flow) Magnitude() types.Quantity { return f.Quantity }

func (f Flow) RunningBalance() types.Quantity {
	if f.Balance != nil {
		return *f.Balance
	}
	return f.Quantity
}

func (f Flow) HasRunningBalance() bool { return f.Balance != nil }
func (Flow) isRecord()                 {}

// CostValue returns the recorded cost, or zero when the row has none.
func (f Flow) CostValue() types.Money {
	if f.Cost == nil {
		return types.Zero()
	}
	return *f.Cost
}

// compareRecords orders by CreatedAt, then RowID byte order.
func compareRecords(a, b Record) int {
	ha, hb := a.Head(), b.Head()
	if c := ha.CreatedAt.Compare(hb.CreatedAt); c != 0 {
		return c
	}
	return id.Compare(ha.RowID, hb.RowID)
}

// Sorted returns a chronologically ordered copy of records.
func Sorted(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, compareRecords)
	return out
}

// GroupByPair partitions records by (entity, branch).
func GroupByPair(records []Record) map[Pair][]Record {
	groups := make(map[Pair][]Record)
	for _, r := range records {
		p := r.Head().Pair()
		groups[p] = append(groups[p], r)
	}
	return groups
}

// SelectCategory returns the records of the given categories, preserving order.
func SelectCategory(records []Record, cats ...Category) []Record {
	var out []Record
	for _, r := range records {
		if slices.Contains(cats, r.Head().Category) {
			out = append(out, r)
		}
	}
	return out
}
