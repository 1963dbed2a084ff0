package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

func testCatalog() *Catalog {
	return NewCatalog(
		[]Material{
			{ID: flour, Name: "Flour", Unit: "kg", UnitPrice: mp("800"), MinimumStock: q("25")},
			{ID: sugar, Name: "Sugar", Unit: "kg", MinimumStock: q("10")},
		},
		[]Product{
			{ID: bread, Name: "Bread", Price: mp("1500")},
			{ID: cake, Name: "Cake"},
		},
		[]Recipe{
			{ProductID: bread, Name: "Bread", UnitCost: mp("600"), SellingPrice: mp("1400")},
			{ProductID: cake, Name: "Cake", UnitCost: mp("2000")},
		},
		[]Branch{{ID: ikeja, Name: "Ikeja"}, {ID: lekki, Name: "Lekki"}},
	)
}

func mustWindow(t *testing.T, from, to string) Window {
	t.Helper()
	w, err := NewWindow(Range{From: atp(from), To: atp(to)}, time.UTC)
	require.NoError(t, err)
	return w
}

func TestAggregateRange_FlourScenario(t *testing.T) {
	records := flourHistory(t, ikeja)

	assert.Equal(t, q("120"), ResolveAt(records, atp("2024-01-05"), ModeClosing))

	agg := NewAggregator(KindMaterial, testCatalog(), BasisCost)
	report := agg.AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))

	require.Len(t, report.Summaries, 1)
	s := report.Summaries[0]
	assert.Equal(t, flour, s.EntityID)
	assert.Equal(t, "Flour", s.EntityName)
	assert.Equal(t, q("100"), s.Opening)
	assert.Equal(t, q("50"), s.StockIn)
	assert.Equal(t, q("0"), s.Damages)
	assert.Equal(t, q("0"), s.TransfersOut)
	assert.Equal(t, q("120"), s.Closing)

	assert.True(t, s.PriceKnown)
	assert.True(t, s.OpeningValue.Equal(types.MustMoney("80000")))
	assert.True(t, s.ClosingValue.Equal(types.MustMoney("96000")))
	assert.True(t, s.StockInValue.Equal(types.MustMoney("40000")))
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.Omitted)
	assert.Equal(t, s.Closing, report.Total.Closing)
	assert.True(t, report.Total.ClosingValue.Equal(s.ClosingValue))
}

func TestAggregateRange_ClosingSnapshotsWin(t *testing.T) {
	records := append(flourHistory(t, ikeja),
		level(t, KindMaterial, CategoryClosing, flour, ikeja, "2024-01-04 20:00", "140", nil),
		level(t, KindMaterial, CategoryClosing, flour, ikeja, "2024-01-09 20:00", "90", nil),
	)
	agg := NewAggregator(KindMaterial, testCatalog(), BasisCost)
	report := agg.AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))

	require.Len(t, report.Summaries, 1)
	assert.Equal(t, q("140"), report.Summaries[0].Closing)
}

func TestAggregateRange_FlowsOutsideWindowIgnored(t *testing.T) {
	records := append(flourHistory(t, ikeja),
		flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2023-12-31 23:59", "3", nil),
		flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2024-01-05 23:59", "2", nil),
		flow(t, KindMaterial, CategoryTransferOut, flour, ikeja, "2024-01-06 00:00", "9", nil),
		flow(t, KindMaterial, CategoryTransferIn, flour, ikeja, "2024-01-02", "4", nil),
	)
	agg := NewAggregator(KindMaterial, testCatalog(), BasisCost)
	report := agg.AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))

	s := report.Summaries[0]
	assert.Equal(t, q("2"), s.Damages)
	assert.Equal(t, q("54"), s.StockIn)
	assert.Equal(t, q("0"), s.TransfersOut)
	// flows without a stored balance do not move the closing figure
	assert.Equal(t, q("120"), s.Closing)
}

func TestAggregateRange_OpenStartUsesHistoryStart(t *testing.T) {
	records := []Record{
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-01", "100", qp("100")),
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-10", "300", qp("300")),
	}
	w, err := NewWindow(Range{To: atp("2024-01-05")}, time.UTC)
	require.NoError(t, err)

	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).AggregateRange(records, AllBranches, w)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, q("100"), report.Summaries[0].Opening)
	assert.Equal(t, q("100"), report.Summaries[0].Closing)

	// without a documented opening stock history starts at zero
	records = []Record{
		level(t, KindMaterial, CategoryOpening, flour, ikeja, "2024-01-01", "100", nil),
	}
	report = NewAggregator(KindMaterial, testCatalog(), BasisCost).AggregateRange(records, AllBranches, w)
	assert.Equal(t, q("0"), report.Summaries[0].Opening)
	assert.Equal(t, q("100"), report.Summaries[0].Closing)
}

func TestAggregateRange_SingleDay(t *testing.T) {
	records := flourHistory(t, ikeja)
	w, err := NewWindow(Range{From: atp("2024-01-03")}, time.UTC)
	require.NoError(t, err)

	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).AggregateRange(records, AllBranches, w)
	s := report.Summaries[0]
	assert.Equal(t, q("100"), s.Opening)
	assert.Equal(t, q("50"), s.StockIn)
	assert.Equal(t, q("150"), s.Closing)
}

func TestAggregateRange_OmitsPairsWithoutAnchor(t *testing.T) {
	records := append(flourHistory(t, ikeja),
		flow(t, KindMaterial, CategoryDamageOut, sugar, ikeja, "2024-01-02", "1", nil),
	)
	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).
		AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))

	require.Len(t, report.Summaries, 1)
	assert.Equal(t, flour, report.Summaries[0].EntityID)
	assert.Equal(t, []Pair{{EntityID: sugar, BranchID: ikeja}}, report.Omitted)
}

func TestAggregateRange_IgnoresOtherKinds(t *testing.T) {
	records := append(flourHistory(t, ikeja),
		level(t, KindProduct, CategoryOpening, bread, ikeja, "2024-01-01", "10", nil),
	)
	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).
		AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))
	assert.Len(t, report.Summaries, 1)
	assert.Empty(t, report.Omitted)
}

func TestAggregateRange_MissingPriceWarns(t *testing.T) {
	records := []Record{
		level(t, KindMaterial, CategoryOpening, sugar, ikeja, "2024-01-01", "10", nil),
		level(t, KindMaterial, CategoryOpening, sugar, lekki, "2024-01-01", "4", nil),
	}
	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).
		AggregateRange(records, AllBranches, mustWindow(t, "2024-01-01", "2024-01-05"))

	require.Len(t, report.Summaries, 2)
	for _, s := range report.Summaries {
		assert.False(t, s.PriceKnown)
		assert.True(t, s.OpeningValue.IsZero())
	}
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, apperror.CodeMissingReference, report.Warnings[0].Code)
	assert.Equal(t, sugar, report.Warnings[0].EntityID)
}

func TestAggregateRange_AllBranchesIsSumOfBranches(t *testing.T) {
	records := append(flourHistory(t, ikeja), flourHistory(t, lekki)...)
	records = append(records,
		level(t, KindMaterial, CategoryOpening, sugar, lekki, "2023-12-20", "40", nil),
		flow(t, KindMaterial, CategoryDamageOut, sugar, lekki, "2024-01-02", "1.25", nil),
		flow(t, KindMaterial, CategoryTransferOut, flour, lekki, "2024-01-04", "6", nil),
		flow(t, KindMaterial, CategoryDamageOut, flour, ikeja, "2024-01-04", "2", nil),
	)
	agg := NewAggregator(KindMaterial, testCatalog(), BasisCost)
	w := mustWindow(t, "2024-01-01", "2024-01-05")

	all := agg.AggregateRange(records, AllBranches, w)
	perBranch := agg.AggregateRange(records, OnlyBranch(ikeja), w).
		Merge(agg.AggregateRange(records, OnlyBranch(lekki), w))

	assert.ElementsMatch(t, all.Summaries, perBranch.Summaries)
	assert.Equal(t, all.Total.Opening, perBranch.Total.Opening)
	assert.Equal(t, all.Total.Closing, perBranch.Total.Closing)
	assert.Equal(t, all.Total.Damages, perBranch.Total.Damages)
	assert.Equal(t, all.Total.StockIn, perBranch.Total.StockIn)
	assert.Equal(t, all.Total.TransfersOut, perBranch.Total.TransfersOut)
	assert.True(t, all.Total.ClosingValue.Equal(perBranch.Total.ClosingValue))
	assert.True(t, all.Total.DamagesValue.Equal(perBranch.Total.DamagesValue))

	assert.Equal(t, q("3.25"), all.Total.Damages)
	assert.Equal(t, q("6"), all.Total.TransfersOut)
}

func TestAggregateRange_BranchFilter(t *testing.T) {
	records := append(flourHistory(t, ikeja), flourHistory(t, lekki)...)
	report := NewAggregator(KindMaterial, testCatalog(), BasisCost).
		AggregateRange(records, OnlyBranch(lekki), mustWindow(t, "2024-01-01", "2024-01-05"))

	require.Len(t, report.Summaries, 1)
	assert.Equal(t, lekki, report.Summaries[0].BranchID)
}

func TestAggregateRange_Empty(t *testing.T) {
	report := NewAggregator(KindProduct, testCatalog(), BasisSelling).AggregateRange(nil, AllBranches, Unbounded)
	assert.Empty(t, report.Summaries)
	assert.NotNil(t, report.Summaries)
	assert.Equal(t, q("0"), report.Total.Closing)
}

func TestAggregateRange_ProductSellingBasis(t *testing.T) {
	records := []Record{
		level(t, KindProduct, CategoryOpening, bread, ikeja, "2024-01-01", "10", nil),
		flow(t, KindProduct, CategoryProductionIn, bread, ikeja, "2024-01-02", "20", qp("30")),
	}
	w := mustWindow(t, "2024-01-01", "2024-01-02")

	selling := NewAggregator(KindProduct, testCatalog(), BasisSelling).AggregateRange(records, AllBranches, w)
	cost := NewAggregator(KindProduct, testCatalog(), BasisCost).AggregateRange(records, AllBranches, w)

	assert.True(t, selling.Summaries[0].ClosingValue.Equal(types.MustMoney("45000")))
	assert.True(t, cost.Summaries[0].ClosingValue.Equal(types.MustMoney("18000")))
}
