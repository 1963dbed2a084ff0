package ledger

import (
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// Mode selects which side of an instant the resolver reads.
type Mode int

const (
	// ModeOpening reads the latest row strictly before the instant.
	ModeOpening Mode = iota
	// ModeClosing reads the latest row at or before the instant.
	ModeClosing
)

func (m Mode) String() string {
	if m == ModeOpening {
		return "opening"
	}
	return "closing"
}

// ResolveAt returns the stock level of one (entity, branch) group as of
// instant.
//
// The resolver does not recompute from deltas: it trusts the running balance
// the write side stores on each row. Rows are ordered by CreatedAt with RowID
// breaking ties, so equal timestamps resolve the same way on every call.
//
// A nil instant returns the balance of the most recent row. When an opening
// lookup finds no earlier row, the earliest row on or after the instant
// supplies its documented opening stock.
func ResolveAt(records []Record, instant *time.Time, mode Mode) types.Quantity {
	if len(records) == 0 {
		return 0
	}
	sorted := Sorted(records)
	if instant == nil {
		return sorted[len(sorted)-1].RunningBalance()
	}

	// index of the first row that falls after the cut
	cut := len(sorted)
	for i, r := range sorted {
		at := r.Head().CreatedAt
		if (mode == ModeClosing && at.After(*instant)) || (mode == ModeOpening && !at.Before(*instant)) {
			cut = i
			break
		}
	}
	if cut > 0 {
		return sorted[cut-1].RunningBalance()
	}
	if mode == ModeClosing {
		return 0
	}
	return openingOf(sorted[0])
}

// HistoryStart is the opening of a window with no start: the documented
// opening stock of the earliest row, or zero when it has none.
func HistoryStart(records []Record) types.Quantity {
	if len(records) == 0 {
		return 0
	}
	if s, ok := Sorted(records)[0].(StockLevel); ok && s.OpeningStock != nil {
		return *s.OpeningStock
	}
	return 0
}

func openingOf(r Record) types.Quantity {
	if s, ok := r.(StockLevel); ok && s.OpeningStock != nil {
		return *s.OpeningStock
	}
	return r.RunningBalance()
}

type resolveKey struct {
	pair Pair
	asOf int64
	set  bool
	mode Mode
}

// Resolver memoizes ResolveAt per (pair, instant, mode) for the duration of
// one report computation. Callers must pass the same records for a given
// pair and mode on every call. Not safe for concurrent use.
type Resolver struct {
	memo map[resolveKey]types.Quantity
}

func NewResolver() *Resolver {
	return &Resolver{memo: make(map[resolveKey]types.Quantity)}
}

// Resolve is ResolveAt with memoization.
func (r *Resolver) Resolve(pair Pair, records []Record, instant *time.Time, mode Mode) types.Quantity {
	key := resolveKey{pair: pair, mode: mode}
	if instant != nil {
		key.asOf = instant.UnixNano()
		key.set = true
	}
	if q, ok := r.memo[key]; ok {
		return q
	}
	q := ResolveAt(records, instant, mode)
	r.memo[key] = q
	return q
}

// Len returns the number of memoized snapshots.
func (r *Resolver) Len() int { return len(r.memo) }
