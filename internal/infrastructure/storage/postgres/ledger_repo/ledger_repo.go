// Package ledger_repo reads bakery movement, sales and reference rows from
// PostgreSQL and turns them into ledger records.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"golang.org/x/sync/errgroup"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

var _ reports.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements reports.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// movementRow is one raw movement row. Numeric columns stay untyped until
// they pass the safe cast.
type movementRow struct {
	ID           *id.ID    `db:"id"`
	EntityID     *id.ID    `db:"entity_id"`
	BranchID     *id.ID    `db:"branch_id"`
	CreatedAt    time.Time `db:"created_at"`
	Quantity     any       `db:"quantity"`
	Cost         any       `db:"cost"`
	OpeningStock any       `db:"opening_stock"`
	ClosingStock any       `db:"closing_stock"`
}

func (r *LedgerRepo) movementQuery(q reports.MovementQuery) (squirrel.SelectBuilder, source, error) {
	src, ok := sources[sourceKey{q.Kind, q.Category}]
	if !ok {
		return squirrel.SelectBuilder{}, source{}, apperror.NewValidation(
			fmt.Sprintf("no movement table for %s %s", q.Kind, q.Category))
	}

	sel := r.builder.Select(
		src.idCol+" AS id",
		src.entityCol+" AS entity_id",
		src.branchCol+" AS branch_id",
		src.createdCol+" AS created_at",
		src.quantity+" AS quantity",
		src.cost+" AS cost",
		src.opening+" AS opening_stock",
		src.closing+" AS closing_stock",
	).From(src.table)
	if src.join != "" {
		sel = sel.Join(src.join)
	}

	if q.BranchID != nil {
		sel = sel.Where(squirrel.Eq{src.branchCol: *q.BranchID})
	}
	if q.EntityID != nil {
		sel = sel.Where(squirrel.Eq{src.entityCol: *q.EntityID})
	}
	if q.CreatedAfter != nil {
		sel = sel.Where(squirrel.GtOrEq{src.createdCol: *q.CreatedAfter})
	}
	if q.CreatedBefore != nil {
		sel = sel.Where(squirrel.LtOrEq{src.createdCol: *q.CreatedBefore})
	}

	return sel.OrderBy(src.createdCol, src.idCol), src, nil
}

// FetchMovements loads the rows of one category.
func (r *LedgerRepo) FetchMovements(ctx context.Context, q reports.MovementQuery) ([]ledger.Record, error) {
	sel, src, err := r.movementQuery(q)
	if err != nil {
		return nil, err
	}
	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewFetchFailed(src.name, err)
	}

	records, malformed := toRecords(q.Kind, q.Category, rows)
	if malformed > 0 {
		logger.Warn(ctx, "malformed movement rows coerced",
			"code", apperror.CodeMalformedRecord,
			"table", src.name,
			"count", malformed)
	}
	return records, nil
}

// toRecords converts raw rows. Rows without ids are dropped; malformed
// numbers become 0. Both are counted as malformed.
func toRecords(kind ledger.EntityKind, cat ledger.Category, rows []movementRow) ([]ledger.Record, int) {
	out := make([]ledger.Record, 0, len(rows))
	malformed := 0
	for _, row := range rows {
		if row.ID == nil || row.EntityID == nil || row.BranchID == nil {
			malformed++
			continue
		}
		h := ledger.Header{
			RowID:     *row.ID,
			Kind:      kind,
			EntityID:  *row.EntityID,
			BranchID:  *row.BranchID,
			Category:  cat,
			CreatedAt: row.CreatedAt,
		}

		qty, ok := types.SafeQuantity(row.Quantity)
		if !ok {
			malformed++
		}

		var (
			rec ledger.Record
			err error
		)
		if cat.IsSnapshot() {
			rec, err = ledger.NewStockLevel(h, qty,
				types.OptionalQuantity(row.OpeningStock),
				types.OptionalQuantity(row.ClosingStock))
		} else {
			rec, err = ledger.NewFlow(h, qty, optionalMoney(row.Cost, &malformed), nil)
		}
		if err != nil {
			malformed++
			continue
		}
		out = append(out, rec)
	}
	return out, malformed
}

func optionalMoney(v any, malformed *int) *types.Money {
	if v == nil {
		return nil
	}
	m, ok := types.SafeMoney(v)
	if !ok {
		*malformed++
		return nil
	}
	return &m
}

type saleRow struct {
	SaleID    *id.ID    `db:"sale_id"`
	ProductID *id.ID    `db:"product_id"`
	BranchID  *id.ID    `db:"branch_id"`
	Quantity  any       `db:"quantity"`
	UnitPrice any       `db:"unit_price"`
	Subtotal  any       `db:"subtotal"`
	TotalCost any       `db:"total_cost"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *LedgerRepo) salesQuery(q reports.SalesQuery) squirrel.SelectBuilder {
	sel := r.builder.Select(
		"s.id AS sale_id", "si.product_id", "s.branch_id",
		"si.quantity", "si.unit_price", "si.subtotal", "si.total_cost",
		"s.created_at",
	).From("sale_items si").
		Join("sales s ON s.id = si.sale_id")

	if q.BranchID != nil {
		sel = sel.Where(squirrel.Eq{"s.branch_id": *q.BranchID})
	}
	if q.ProductID != nil {
		sel = sel.Where(squirrel.Eq{"si.product_id": *q.ProductID})
	}
	if q.CreatedAfter != nil {
		sel = sel.Where(squirrel.GtOrEq{"s.created_at": *q.CreatedAfter})
	}
	if q.CreatedBefore != nil {
		sel = sel.Where(squirrel.LtOrEq{"s.created_at": *q.CreatedBefore})
	}
	return sel.OrderBy("s.created_at", "si.id")
}

// FetchSales loads sold lines, filtered on the parent sale.
func (r *LedgerRepo) FetchSales(ctx context.Context, q reports.SalesQuery) ([]ledger.SaleLine, error) {
	sql, args, err := r.salesQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []saleRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewFetchFailed("sale_items", err)
	}

	lines := make([]ledger.SaleLine, 0, len(rows))
	malformed := 0
	money := func(v any) types.Money {
		m, ok := types.SafeMoney(v)
		if !ok {
			malformed++
		}
		return m
	}
	for _, row := range rows {
		if row.SaleID == nil || row.ProductID == nil || row.BranchID == nil {
			malformed++
			continue
		}
		qty, ok := types.SafeQuantity(row.Quantity)
		if !ok {
			malformed++
		}
		lines = append(lines, ledger.SaleLine{
			SaleID:    *row.SaleID,
			ProductID: *row.ProductID,
			BranchID:  *row.BranchID,
			Quantity:  qty,
			UnitPrice: money(row.UnitPrice),
			Subtotal:  money(row.Subtotal),
			TotalCost: money(row.TotalCost),
			CreatedAt: row.CreatedAt,
		})
	}
	if malformed > 0 {
		logger.Warn(ctx, "malformed sale rows coerced",
			"code", apperror.CodeMalformedRecord, "count", malformed)
	}
	return lines, nil
}

type expenseRow struct {
	ID        id.ID     `db:"id"`
	BranchID  *id.ID    `db:"branch_id"`
	Cost      any       `db:"cost"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *LedgerRepo) expenseQuery(q reports.ExpenseQuery) squirrel.SelectBuilder {
	sel := r.builder.Select("id", "branch_id", "cost", "created_at").From("imprest_supplied")
	if q.BranchID != nil {
		sel = sel.Where(squirrel.Eq{"branch_id": *q.BranchID})
	}
	if q.CreatedAfter != nil {
		sel = sel.Where(squirrel.GtOrEq{"created_at": *q.CreatedAfter})
	}
	if q.CreatedBefore != nil {
		sel = sel.Where(squirrel.LtOrEq{"created_at": *q.CreatedBefore})
	}
	return sel.OrderBy("created_at", "id")
}

// FetchExpenses loads imprest supplies.
func (r *LedgerRepo) FetchExpenses(ctx context.Context, q reports.ExpenseQuery) ([]ledger.Expense, error) {
	sql, args, err := r.expenseQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []expenseRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewFetchFailed("imprest_supplied", err)
	}

	out := make([]ledger.Expense, 0, len(rows))
	malformed := 0
	for _, row := range rows {
		cost, ok := types.SafeMoney(row.Cost)
		if !ok {
			malformed++
		}
		var branch id.ID
		if row.BranchID != nil {
			branch = *row.BranchID
		}
		out = append(out, ledger.Expense{RowID: row.ID, BranchID: branch, Cost: cost, CreatedAt: row.CreatedAt})
	}
	if malformed > 0 {
		logger.Warn(ctx, "malformed imprest rows coerced",
			"code", apperror.CodeMalformedRecord, "count", malformed)
	}
	return out, nil
}

type materialRow struct {
	ID           id.ID   `db:"id"`
	Name         string  `db:"name"`
	Unit         *string `db:"unit"`
	UnitPrice    any     `db:"unit_price"`
	MinimumStock any     `db:"minimum_stock"`
}

type productRow struct {
	ID    id.ID  `db:"id"`
	Name  string `db:"name"`
	Price any    `db:"price"`
}

type recipeRow struct {
	ProductID    id.ID  `db:"product_id"`
	Name         string `db:"name"`
	UnitCost     any    `db:"unit_cost"`
	SellingPrice any    `db:"selling_price"`
}

type branchRow struct {
	ID   id.ID  `db:"id"`
	Name string `db:"name"`
}

// referenceQueries returns the reference selects keyed by table name.
func (r *LedgerRepo) referenceQueries() map[string]squirrel.SelectBuilder {
	return map[string]squirrel.SelectBuilder{
		"materials": r.builder.Select("id", "name", "unit", "unit_price", "minimum_stock").
			From("materials").OrderBy("name", "id"),
		"products": r.builder.Select("id", "name", "price").
			From("products").OrderBy("name", "id"),
		// Newest recipe first; the catalog keeps the first per product.
		"recipes": r.builder.Select("product_id", "name", "unit_cost", "selling_price").
			From("recipes").OrderBy("created_at DESC"),
		"branches": r.builder.Select("id", "name").
			From("branches").OrderBy("name", "id"),
	}
}

func selectInto[T any](ctx context.Context, q postgres.Querier, table string, sel squirrel.SelectBuilder, dst *[]T) error {
	sql, args, err := sel.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", table, err)
	}
	if err := pgxscan.Select(ctx, q, dst, sql, args...); err != nil {
		return apperror.NewFetchFailed(table, err)
	}
	return nil
}

// FetchReference loads materials, products, recipes and branches concurrently.
func (r *LedgerRepo) FetchReference(ctx context.Context) (reports.Reference, error) {
	var (
		materials []materialRow
		products  []productRow
		recipes   []recipeRow
		branches  []branchRow
	)
	queries := r.referenceQueries()

	g, gctx := errgroup.WithContext(postgres.Concurrent(ctx))
	querier := r.txManager.GetQuerier(gctx)
	g.Go(func() error { return selectInto(gctx, querier, "materials", queries["materials"], &materials) })
	g.Go(func() error { return selectInto(gctx, querier, "products", queries["products"], &products) })
	g.Go(func() error { return selectInto(gctx, querier, "recipes", queries["recipes"], &recipes) })
	g.Go(func() error { return selectInto(gctx, querier, "branches", queries["branches"], &branches) })
	if err := g.Wait(); err != nil {
		return reports.Reference{}, err
	}

	malformed := 0
	ref := reports.Reference{
		Materials: make([]ledger.Material, 0, len(materials)),
		Products:  make([]ledger.Product, 0, len(products)),
		Recipes:   make([]ledger.Recipe, 0, len(recipes)),
		Branches:  make([]ledger.Branch, 0, len(branches)),
	}
	for _, m := range materials {
		minimum, ok := types.SafeQuantity(m.MinimumStock)
		if !ok {
			malformed++
		}
		unit := ""
		if m.Unit != nil {
			unit = *m.Unit
		}
		ref.Materials = append(ref.Materials, ledger.Material{
			ID:           m.ID,
			Name:         m.Name,
			Unit:         unit,
			UnitPrice:    optionalMoney(m.UnitPrice, &malformed),
			MinimumStock: minimum,
		})
	}
	for _, p := range products {
		ref.Products = append(ref.Products, ledger.Product{
			ID: p.ID, Name: p.Name, Price: optionalMoney(p.Price, &malformed),
		})
	}
	for _, rc := range recipes {
		ref.Recipes = append(ref.Recipes, ledger.Recipe{
			ProductID:    rc.ProductID,
			Name:         rc.Name,
			UnitCost:     optionalMoney(rc.UnitCost, &malformed),
			SellingPrice: optionalMoney(rc.SellingPrice, &malformed),
		})
	}
	for _, b := range branches {
		ref.Branches = append(ref.Branches, ledger.Branch{ID: b.ID, Name: b.Name})
	}
	if malformed > 0 {
		logger.Warn(ctx, "malformed reference values ignored",
			"code", apperror.CodeMalformedRecord, "count", malformed)
	}
	return ref, nil
}
