package ledger

import (
	"slices"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// Drift is a row whose stored running balance disagrees with the balance
// recomputed from the deltas before it.
type Drift struct {
	Kind      EntityKind     `json:"kind"`
	EntityID  id.ID          `json:"entityId"`
	BranchID  id.ID          `json:"branchId"`
	RowID     id.ID          `json:"rowId"`
	Category  Category       `json:"category"`
	CreatedAt time.Time      `json:"createdAt"`
	Stored    types.Quantity `json:"stored"`
	Expected  types.Quantity `json:"expected"`
}

func (d Drift) Delta() types.Quantity { return d.Stored - d.Expected }

// Reconcile walks every (entity, branch) group in order and checks the
// stored running balances.
//
// Opening rows add stock like receipts, matching how current stock is
// computed. Flow rows move the balance by their signed magnitude; closing
// rows and flows with a stored balance are compared with the recomputed
// value. After a mismatch the walk continues from the stored
// value, so one bad row is reported once.
func Reconcile(records []Record, signs SignMap) []Drift {
	var drifts []Drift
	for _, group := range GroupByPair(records) {
		var running types.Quantity
		for _, r := range Sorted(group) {
			h := r.Head()
			switch rec := r.(type) {
			case StockLevel:
				if h.Category != CategoryClosing {
					if sign, ok := signs[h.Category]; ok {
						running += rec.Quantity.Mul(int(sign))
					}
					continue
				}
				if rec.Quantity != running {
					drifts = append(drifts, newDrift(h, rec.Quantity, running))
				}
				running = rec.Quantity
			case Flow:
				if sign, ok := signs[h.Category]; ok {
					running += rec.Quantity.Mul(int(sign))
				}
				if rec.Balance != nil {
					if *rec.Balance != running {
						drifts = append(drifts, newDrift(h, *rec.Balance, running))
					}
					running = *rec.Balance
				}
			}
		}
	}
	slices.SortFunc(drifts, func(a, b Drift) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return id.Compare(a.RowID, b.RowID)
	})
	return drifts
}

func newDrift(h Header, stored, expected types.Quantity) Drift {
	return Drift{
		Kind:      h.Kind,
		EntityID:  h.EntityID,
		BranchID:  h.BranchID,
		RowID:     h.RowID,
		Category:  h.Category,
		CreatedAt: h.CreatedAt,
		Stored:    stored,
		Expected:  expected,
	}
}
