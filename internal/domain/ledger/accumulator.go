package ledger

import (
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// Accumulate sums sign(category)*magnitude over records. Callers filter by
// date beforehand.
func Accumulate(records []Record, signs SignMap) types.Quantity {
	var total types.Quantity
	for _, r := range records {
		sign, ok := signs[r.Head().Category]
		if !ok {
			continue
		}
		total += r.Magnitude().Mul(int(sign))
	}
	return total
}

// CurrentByPair returns the net quantity of every (entity, branch) group.
func CurrentByPair(records []Record, signs SignMap) map[Pair]types.Quantity {
	out := make(map[Pair]types.Quantity)
	for pair, group := range GroupByPair(records) {
		out[pair] = Accumulate(group, signs)
	}
	return out
}

// CurrentQuantities returns the net quantity per entity across all branches
// present in records.
func CurrentQuantities(records []Record, signs SignMap) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity)
	for _, r := range records {
		h := r.Head()
		sign, ok := signs[h.Category]
		if !ok {
			if _, seen := out[h.EntityID]; !seen {
				out[h.EntityID] = 0
			}
			continue
		}
		out[h.EntityID] += r.Magnitude().Mul(int(sign))
	}
	return out
}
