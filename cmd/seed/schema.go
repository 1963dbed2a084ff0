package main

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yemzchef-ui/superchefs/internal/infrastructure/cache"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres/ledger_repo"
)

// ledgerObjects are owned by the ledger service itself.
var ledgerObjects = []string{
	`CREATE TABLE IF NOT EXISTS ledger_drift_log (
		id                 UUID PRIMARY KEY,
		started_at         TIMESTAMPTZ NOT NULL,
		finished_at        TIMESTAMPTZ NOT NULL,
		rows_checked       INTEGER NOT NULL,
		drift_count        INTEGER NOT NULL,
		payload            JSONB,
		payload_compressed BYTEA,
		compression_algo   TEXT NOT NULL DEFAULT 'none'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_drift_log_started ON ledger_drift_log (started_at DESC)`,
	fmt.Sprintf(`CREATE OR REPLACE FUNCTION ledger_notify_stock_changed() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('%s', TG_TABLE_NAME);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`, cache.StockChangedChannel),
}

// notifyTables raise stock_changed on every write. Besides the movement
// tables, sales and imprest feed metrics and reference prices feed valuation.
func notifyTables() []string {
	tables := ledger_repo.SourceTables()
	return append(tables, "sales", "imprest_supplied", "materials", "products", "recipes", "branches")
}

func ledgerSchema() []postgres.BatchQuery {
	queries := make([]postgres.BatchQuery, 0, len(ledgerObjects)+len(notifyTables()))
	for _, stmt := range ledgerObjects {
		queries = append(queries, postgres.BatchQuery{SQL: stmt})
	}
	for _, t := range notifyTables() {
		queries = append(queries, postgres.BatchQuery{SQL: fmt.Sprintf(
			`CREATE OR REPLACE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s
			FOR EACH STATEMENT EXECUTE FUNCTION ledger_notify_stock_changed()`,
			pgx.Identifier{t + "_stock_changed"}.Sanitize(), pgx.Identifier{t}.Sanitize(),
		)})
	}
	return queries
}

// devTables mirror the bakery application's tables closely enough for
// local development. Production schemas are owned by that application.
func devTables() []postgres.BatchQuery {
	head := "id UUID PRIMARY KEY, branch_id UUID NOT NULL, created_at TIMESTAMPTZ NOT NULL DEFAULT now()"
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS branches (id UUID PRIMARY KEY, name TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		`CREATE TABLE IF NOT EXISTS materials (id UUID PRIMARY KEY, name TEXT NOT NULL, unit TEXT, unit_price NUMERIC, minimum_stock NUMERIC, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		`CREATE TABLE IF NOT EXISTS products (id UUID PRIMARY KEY, name TEXT NOT NULL, price NUMERIC, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		`CREATE TABLE IF NOT EXISTS recipes (id UUID PRIMARY KEY, product_id UUID NOT NULL, name TEXT NOT NULL, unit_cost NUMERIC, selling_price NUMERIC, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		`CREATE TABLE IF NOT EXISTS sales (` + head + `)`,
		`CREATE TABLE IF NOT EXISTS sale_items (id UUID PRIMARY KEY, sale_id UUID NOT NULL, product_id UUID NOT NULL, quantity NUMERIC, unit_price NUMERIC, subtotal NUMERIC, total_cost NUMERIC, created_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
		`CREATE TABLE IF NOT EXISTS imprest_supplied (` + head + `, cost NUMERIC)`,
	}

	movement := func(table, entityCol string, extra ...string) string {
		cols := append([]string{head, entityCol + " UUID NOT NULL", "quantity NUMERIC"}, extra...)
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
	}
	ddl = append(ddl,
		movement("inventory", "material_id", "opening_stock NUMERIC"),
		movement("material_closing_stock", "material_id", "closing_stock NUMERIC"),
		movement("procurement_supplied", "material_id", "cost NUMERIC"),
		movement("material_transfers_in", "material_id"),
		movement("material_transfers_out", "material_id"),
		movement("material_usage", "material_id", "cost NUMERIC"),
		movement("damaged_materials", "material_id", "cost NUMERIC"),
		movement("product_inventory", "product_id", "opening_stock NUMERIC"),
		movement("product_closing_stock", "product_id", "closing_stock NUMERIC"),
		movement("production", "product_id", "yield NUMERIC"),
		movement("product_transfers_in", "product_id"),
		movement("product_transfers_out", "product_id"),
		movement("product_damages", "product_id", "cost NUMERIC"),
		movement("complimentary_products", "product_id", "cost NUMERIC"),
	)

	out := make([]postgres.BatchQuery, len(ddl))
	for i, stmt := range ddl {
		out[i] = postgres.BatchQuery{SQL: stmt}
	}
	return out
}
