package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulate_Empty(t *testing.T) {
	assert.Equal(t, q("0"), Accumulate(nil, DefaultSigns))
	assert.Equal(t, q("0"), Accumulate([]Record{}, DefaultSigns))
}

func TestAccumulate_SingleDamageIsNegative(t *testing.T) {
	for _, qty := range []string{"1", "7.5", "1200"} {
		records := []Record{flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2024-01-02", qty, nil)}
		assert.Equal(t, q(qty).Neg(), Accumulate(records, DefaultSigns), qty)
	}
}

func TestAccumulate_DefaultSigns(t *testing.T) {
	records := []Record{
		level(t, KindProduct, CategoryOpening, bread, ikeja, "2024-01-01", "20", nil),
		flow(t, KindProduct, CategoryProductionIn, bread, ikeja, "2024-01-02", "40", nil),
		flow(t, KindProduct, CategoryTransferIn, bread, ikeja, "2024-01-02", "5", nil),
		flow(t, KindProduct, CategoryTransferOut, bread, ikeja, "2024-01-03", "3", nil),
		flow(t, KindProduct, CategorySalesOut, bread, ikeja, "2024-01-03", "30", nil),
		flow(t, KindProduct, CategoryComplimentaryOut, bread, ikeja, "2024-01-03", "2", nil),
		flow(t, KindProduct, CategoryDamageOut, bread, ikeja, "2024-01-04", "1.5", nil),
		level(t, KindProduct, CategoryClosing, bread, ikeja, "2024-01-04", "999", nil),
	}
	assert.Equal(t, q("28.5"), Accumulate(records, DefaultSigns))
}

func TestAccumulate_UnmappedCategoriesContributeNothing(t *testing.T) {
	records := []Record{
		flow(t, KindMaterial, CategoryProcurementIn, flour, ikeja, "2024-01-02", "50", nil),
		flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2024-01-02", "4", nil),
	}
	assert.Equal(t, q("4"), Accumulate(records, DamageSigns))
	assert.Equal(t, q("50"), Accumulate(records, StockInSigns))
	assert.Equal(t, q("0"), Accumulate(records, TransferOutSigns))
}

func TestCurrentQuantities(t *testing.T) {
	records := append(flourHistory(t, ikeja), flourHistory(t, lekki)...)
	records = append(records, flow(t, KindMaterial, CategoryDamageOut, sugar, lekki, "2024-01-02", "2", nil))

	byEntity := CurrentQuantities(records, DefaultSigns)
	assert.Equal(t, q("240"), byEntity[flour])
	assert.Equal(t, q("-2"), byEntity[sugar])

	byPair := CurrentByPair(records, DefaultSigns)
	assert.Equal(t, q("120"), byPair[Pair{EntityID: flour, BranchID: ikeja}])
	assert.Equal(t, q("120"), byPair[Pair{EntityID: flour, BranchID: lekki}])
	assert.Len(t, byPair, 3)
}

func TestCurrentQuantities_OpeningStockIsNotAdded(t *testing.T) {
	records := []Record{
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-01", "100", qp("100")),
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-03", "20", qp("60")),
		flow(t, KindMaterial, CategoryUsageOut, flour, ikeja, "2024-01-04", "30", nil),
	}
	assert.Equal(t, q("90"), CurrentQuantities(records, DefaultSigns)[flour])
}

func TestSignMap_Only(t *testing.T) {
	m := DefaultSigns.Only(CategoryUsageOut, CategoryClosing)
	assert.Equal(t, SignMap{CategoryUsageOut: Outflow}, m)
	_, hasOpening := DeltaSigns[CategoryOpening]
	assert.False(t, hasOpening)
}
