package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_Consistent(t *testing.T) {
	records := append(flourHistory(t, ikeja), flourHistory(t, lekki)...)
	assert.Empty(t, Reconcile(records, DefaultSigns))
}

func TestReconcile_ReportsEachBreakOnce(t *testing.T) {
	records := []Record{
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-01", "100", qp("100")),
		flow(t, KindMaterial, CategoryProcurementIn, flour, ikeja, "2024-01-03", "50", qp("155")),
		flow(t, KindMaterial, CategoryUsageOut, flour, ikeja, "2024-01-05", "30", qp("125")),
		flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2024-01-06", "5", nil),
		level(t, KindMaterial, CategoryClosing, flour, ikeja, "2024-01-07", "118", nil),
	}
	drifts := Reconcile(records, DefaultSigns)
	require.Len(t, drifts, 2)

	assert.Equal(t, CategoryProcurementIn, drifts[0].Category)
	assert.Equal(t, q("155"), drifts[0].Stored)
	assert.Equal(t, q("150"), drifts[0].Expected)
	assert.Equal(t, q("5"), drifts[0].Delta())

	assert.Equal(t, CategoryClosing, drifts[1].Category)
	assert.Equal(t, q("118"), drifts[1].Stored)
	assert.Equal(t, q("120"), drifts[1].Expected)
}

func TestReconcile_OpeningRowsAreAdditive(t *testing.T) {
	records := []Record{
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-01", "100", nil),
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-03", "20", nil),
		level(t, KindMaterial, CategoryClosing, flour, ikeja, "2024-01-04", "120", nil),
	}
	assert.Equal(t, q("120"), CurrentQuantities(records[:2], DefaultSigns)[flour])
	assert.Empty(t, Reconcile(records, DefaultSigns))
}

func TestReconcile_OpeningBetweenFlows(t *testing.T) {
	records := []Record{
		level(t, KindProduct, CategoryOpening, bread, ikeja, "2024-01-01", "10", nil),
		flow(t, KindProduct, CategorySalesOut, bread, ikeja, "2024-01-02", "4", qp("6")),
		level(t, KindProduct, CategoryOpening, bread, ikeja, "2024-01-03", "40", nil),
		flow(t, KindProduct, CategoryProductionIn, bread, ikeja, "2024-01-04", "5", qp("51")),
		level(t, KindProduct, CategoryClosing, bread, ikeja, "2024-01-05", "45", nil),
	}
	drifts := Reconcile(records, DefaultSigns)
	require.Len(t, drifts, 1)
	assert.Equal(t, CategoryClosing, drifts[0].Category)
	assert.Equal(t, q("45"), drifts[0].Stored)
	assert.Equal(t, q("51"), drifts[0].Expected)
}
