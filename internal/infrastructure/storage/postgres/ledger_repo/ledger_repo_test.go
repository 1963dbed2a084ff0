package ledger_repo

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
)

var (
	flour = id.MustParse("0190a000-0000-7000-8000-00000000f001")
	ikeja = id.MustParse("0190a000-0000-7000-8000-0000000000a1")
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestMovementQuery(t *testing.T) {
	repo := NewLedgerRepo(nil)

	tests := []struct {
		name     string
		query    reports.MovementQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:  "opening snapshot without filters",
			query: reports.MovementQuery{Kind: ledger.KindMaterial, Category: ledger.CategoryOpening},
			wantSQL: "SELECT t.id AS id, t.material_id AS entity_id, t.branch_id AS branch_id, t.created_at AS created_at, " +
				"t.quantity AS quantity, NULL AS cost, t.opening_stock AS opening_stock, NULL AS closing_stock " +
				"FROM inventory t ORDER BY t.created_at, t.id",
		},
		{
			name: "usage in window for one branch",
			query: reports.MovementQuery{
				Kind:          ledger.KindMaterial,
				Category:      ledger.CategoryUsageOut,
				BranchID:      &ikeja,
				CreatedAfter:  ts("2024-01-02T00:00:00Z"),
				CreatedBefore: ts("2024-01-06T23:59:59Z"),
			},
			wantSQL: "SELECT t.id AS id, t.material_id AS entity_id, t.branch_id AS branch_id, t.created_at AS created_at, " +
				"t.quantity AS quantity, t.cost AS cost, NULL AS opening_stock, NULL AS closing_stock " +
				"FROM material_usage t WHERE t.branch_id = $1 AND t.created_at >= $2 AND t.created_at <= $3 " +
				"ORDER BY t.created_at, t.id",
			wantArgs: []any{ikeja.String(), *ts("2024-01-02T00:00:00Z"), *ts("2024-01-06T23:59:59Z")},
		},
		{
			name:  "production prefers yield",
			query: reports.MovementQuery{Kind: ledger.KindProduct, Category: ledger.CategoryProductionIn, EntityID: &flour},
			wantSQL: "SELECT t.id AS id, t.product_id AS entity_id, t.branch_id AS branch_id, t.created_at AS created_at, " +
				"COALESCE(t.yield, t.quantity) AS quantity, NULL AS cost, NULL AS opening_stock, NULL AS closing_stock " +
				"FROM production t WHERE t.product_id = $1 ORDER BY t.created_at, t.id",
			wantArgs: []any{flour.String()},
		},
		{
			name:  "sales join their parent sale",
			query: reports.MovementQuery{Kind: ledger.KindProduct, Category: ledger.CategorySalesOut, BranchID: &ikeja},
			wantSQL: "SELECT si.id AS id, si.product_id AS entity_id, s.branch_id AS branch_id, s.created_at AS created_at, " +
				"si.quantity AS quantity, si.total_cost AS cost, NULL AS opening_stock, NULL AS closing_stock " +
				"FROM sale_items si JOIN sales s ON s.id = si.sale_id WHERE s.branch_id = $1 ORDER BY s.created_at, si.id",
			wantArgs: []any{ikeja.String()},
		},
		{
			name:  "closing snapshot",
			query: reports.MovementQuery{Kind: ledger.KindProduct, Category: ledger.CategoryClosing},
			wantSQL: "SELECT t.id AS id, t.product_id AS entity_id, t.branch_id AS branch_id, t.created_at AS created_at, " +
				"t.quantity AS quantity, NULL AS cost, NULL AS opening_stock, t.closing_stock AS closing_stock " +
				"FROM product_closing_stock t ORDER BY t.created_at, t.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, _, err := repo.movementQuery(tt.query)
			require.NoError(t, err)
			sql, args, err := sel.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestMovementQuery_UnknownSource(t *testing.T) {
	repo := NewLedgerRepo(nil)
	_, _, err := repo.movementQuery(reports.MovementQuery{Kind: ledger.KindMaterial, Category: ledger.CategorySalesOut})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSources_CoverEveryCategory(t *testing.T) {
	for _, kind := range []ledger.EntityKind{ledger.KindMaterial, ledger.KindProduct} {
		for _, cat := range ledger.CategoriesOf(kind) {
			_, ok := sources[sourceKey{kind, cat}]
			assert.True(t, ok, "%s %s", kind, cat)
		}
	}
	assert.Len(t, SourceTables(), 15)
}

func TestSalesAndExpenseQueries(t *testing.T) {
	repo := NewLedgerRepo(nil)

	sql, args, err := repo.salesQuery(reports.SalesQuery{ProductID: &flour, CreatedAfter: ts("2024-01-02T00:00:00Z")}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT s.id AS sale_id, si.product_id, s.branch_id, si.quantity, si.unit_price, si.subtotal, si.total_cost, s.created_at "+
		"FROM sale_items si JOIN sales s ON s.id = si.sale_id WHERE si.product_id = $1 AND s.created_at >= $2 "+
		"ORDER BY s.created_at, si.id", sql)
	assert.Len(t, args, 2)

	sql, args, err = repo.expenseQuery(reports.ExpenseQuery{BranchID: &ikeja}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, branch_id, cost, created_at FROM imprest_supplied WHERE branch_id = $1 ORDER BY created_at, id", sql)
	assert.Equal(t, []any{ikeja.String()}, args)
}

func TestReferenceQueries(t *testing.T) {
	repo := NewLedgerRepo(nil)
	queries := repo.referenceQueries()
	require.Len(t, queries, 4)

	sql, _, err := queries["materials"].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, unit, unit_price, minimum_stock FROM materials ORDER BY name, id", sql)

	sql, _, err = queries["recipes"].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT product_id, name, unit_cost, selling_price FROM recipes ORDER BY created_at DESC", sql)
}

func TestToRecords(t *testing.T) {
	created := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	rowID := id.New()

	t.Run("flow with numeric cost", func(t *testing.T) {
		rows := []movementRow{{
			ID: &rowID, EntityID: &flour, BranchID: &ikeja, CreatedAt: created,
			Quantity: pgtype.Numeric{Int: big.NewInt(-505), Exp: -1, Valid: true},
			Cost:     float64(1200),
		}}
		recs, malformed := toRecords(ledger.KindMaterial, ledger.CategoryUsageOut, rows)
		require.Len(t, recs, 1)
		assert.Zero(t, malformed)

		f, ok := recs[0].(ledger.Flow)
		require.True(t, ok)
		assert.Equal(t, types.MustQuantity("50.5"), f.Quantity, "magnitudes are unsigned")
		require.NotNil(t, f.Cost)
		assert.True(t, f.Cost.Equal(types.MustMoney("1200")))
		assert.False(t, f.HasRunningBalance())
	})

	t.Run("snapshot keeps opening stock", func(t *testing.T) {
		rows := []movementRow{{
			ID: &rowID, EntityID: &flour, BranchID: &ikeja, CreatedAt: created,
			Quantity: int64(100), OpeningStock: "90",
		}}
		recs, malformed := toRecords(ledger.KindMaterial, ledger.CategoryOpening, rows)
		require.Len(t, recs, 1)
		assert.Zero(t, malformed)
		lvl := recs[0].(ledger.StockLevel)
		require.NotNil(t, lvl.OpeningStock)
		assert.Equal(t, types.MustQuantity("90"), *lvl.OpeningStock)
		assert.Nil(t, lvl.ClosingStock)
	})

	t.Run("malformed values are coerced and counted", func(t *testing.T) {
		rows := []movementRow{
			{ID: &rowID, EntityID: &flour, BranchID: &ikeja, CreatedAt: created, Quantity: "lots", Cost: "n/a"},
			{ID: &rowID, EntityID: nil, BranchID: &ikeja, CreatedAt: created, Quantity: int64(1)},
		}
		recs, malformed := toRecords(ledger.KindMaterial, ledger.CategoryDamageOut, rows)
		require.Len(t, recs, 1)
		assert.Equal(t, 3, malformed)
		f := recs[0].(ledger.Flow)
		assert.True(t, f.Quantity.IsZero())
		assert.Nil(t, f.Cost)
	})
}
