package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
)

var seedStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type movement struct {
	key   [2]id.ID
	at    time.Time
	delta decimal.Decimal
}

// materialMovements flattens the material side of d into signed deltas.
func materialMovements(d *dataset) []movement {
	var out []movement
	add := func(h RowHead, entity id.ID, q decimal.Decimal, sign int64) {
		out = append(out, movement{key: [2]id.ID{h.BranchID, entity}, at: h.CreatedAt, delta: q.Mul(decimal.NewFromInt(sign))})
	}
	for _, r := range d.materialOpenings {
		add(r.RowHead, r.MaterialID, r.OpeningStock, 1)
	}
	for _, r := range d.procurements {
		add(r.RowHead, r.MaterialID, r.Quantity, 1)
	}
	for _, r := range d.materialIn {
		add(r.RowHead, r.MaterialID, r.Quantity, 1)
	}
	for _, r := range d.materialOut {
		add(r.RowHead, r.MaterialID, r.Quantity, -1)
	}
	for _, r := range d.usage {
		add(r.RowHead, r.MaterialID, r.Quantity, -1)
	}
	for _, r := range d.materialDamages {
		add(r.RowHead, r.MaterialID, r.Quantity, -1)
	}
	return out
}

func balanceAt(moves []movement, key [2]id.ID, at time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range moves {
		if m.key == key && !m.at.After(at) {
			sum = sum.Add(m.delta)
		}
	}
	return sum
}

func TestGenerate_ClosingsMatchRunningBalance(t *testing.T) {
	d := generate(seedStart, 7, 42)

	require.Len(t, d.branches, len(branchNames))
	require.Len(t, d.materialClosings, 7*len(branchNames)*len(materialSeeds))
	require.Len(t, d.productClosings, 7*len(branchNames)*len(productSeeds))

	moves := materialMovements(d)
	for _, c := range d.materialClosings {
		want := balanceAt(moves, [2]id.ID{c.BranchID, c.MaterialID}, c.CreatedAt)
		assert.True(t, want.Equal(c.ClosingStock), "closing %s at %s: want %s got %s",
			c.MaterialID, c.CreatedAt, want, c.ClosingStock)
		assert.False(t, c.ClosingStock.IsNegative())
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	a := generate(seedStart, 3, 7)
	b := generate(seedStart, 3, 7)

	require.Equal(t, len(a.saleItems), len(b.saleItems))
	for i := range a.usage {
		assert.True(t, a.usage[i].Quantity.Equal(b.usage[i].Quantity))
	}
}

func TestGenerate_SaleItemsReferenceSales(t *testing.T) {
	d := generate(seedStart, 5, 1)
	require.NotEmpty(t, d.sales)

	sales := make(map[id.ID]SaleRow, len(d.sales))
	for _, s := range d.sales {
		sales[s.ID] = s
	}
	for _, item := range d.saleItems {
		sale, ok := sales[item.SaleID]
		require.True(t, ok, "item %s has no sale", item.ID)
		assert.Equal(t, sale.CreatedAt, item.CreatedAt)
		assert.True(t, item.Subtotal.Equal(item.Quantity.Mul(item.UnitPrice)))
	}
}

func TestGenerate_YieldNeverExceedsPlan(t *testing.T) {
	d := generate(seedStart, 6, 3)
	var withYield int
	for _, p := range d.production {
		if p.Yield == nil {
			continue
		}
		withYield++
		assert.True(t, p.Yield.LessThan(p.Quantity))
	}
	assert.Positive(t, withYield)
}

func TestInjectDrift(t *testing.T) {
	d := generate(seedStart, 4, 9)
	moves := materialMovements(d)

	row, err := d.injectDrift(3)
	require.NoError(t, err)

	expected := balanceAt(moves, [2]id.ID{row.BranchID, row.MaterialID}, row.CreatedAt)
	assert.True(t, row.ClosingStock.Sub(expected).Equal(decimal.NewFromInt(3)))

	_, err = (&dataset{}).injectDrift(1)
	assert.Error(t, err)
}

func TestLoads_ColumnsMatchRows(t *testing.T) {
	d := generate(seedStart, 2, 5)

	for _, l := range d.loads() {
		require.NotEmpty(t, l.columns, l.table)
		for _, row := range l.rows {
			require.Len(t, row, len(l.columns), l.table)
		}
	}

	assert.Equal(t,
		[]string{"id", "branch_id", "created_at", "material_id", "quantity", "cost"},
		postgres.ExtractDBColumns[MaterialCostedMove]())
	assert.Equal(t,
		[]string{"id", "branch_id", "created_at", "product_id", "quantity", "yield"},
		postgres.ExtractDBColumns[ProductionRow]())
}

func TestLedgerSchema_TriggerPerTable(t *testing.T) {
	queries := ledgerSchema()
	assert.Len(t, queries, len(ledgerObjects)+len(notifyTables()))
	assert.Contains(t, queries[len(ledgerObjects)].SQL, "FOR EACH STATEMENT")
	assert.Contains(t, notifyTables(), "material_usage")
}
