package ledger_repo

import (
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
)

// source describes where the rows of one (kind, category) live.
type source struct {
	table      string // FROM clause, with alias
	name       string // table name reported on failure
	join       string // optional JOIN clause
	idCol      string
	entityCol  string
	branchCol  string
	createdCol string
	quantity   string
	cost       string
	opening    string
	closing    string
}

type sourceKey struct {
	kind     ledger.EntityKind
	category ledger.Category
}

// flowSource is a movement table with the usual column names.
func flowSource(table, entityCol, quantity, cost string) source {
	return source{
		table:      table + " t",
		name:       table,
		idCol:      "t.id",
		entityCol:  "t." + entityCol,
		branchCol:  "t.branch_id",
		createdCol: "t.created_at",
		quantity:   quantity,
		cost:       cost,
		opening:    "NULL",
		closing:    "NULL",
	}
}

func openingSource(table, entityCol string) source {
	s := flowSource(table, entityCol, "t.quantity", "NULL")
	s.opening = "t.opening_stock"
	return s
}

func closingSource(table, entityCol string) source {
	s := flowSource(table, entityCol, "t.quantity", "NULL")
	s.closing = "t.closing_stock"
	return s
}

var sources = map[sourceKey]source{
	{ledger.KindMaterial, ledger.CategoryOpening}:       openingSource("inventory", "material_id"),
	{ledger.KindMaterial, ledger.CategoryClosing}:       closingSource("material_closing_stock", "material_id"),
	{ledger.KindMaterial, ledger.CategoryProcurementIn}: flowSource("procurement_supplied", "material_id", "t.quantity", "t.cost"),
	{ledger.KindMaterial, ledger.CategoryTransferIn}:    flowSource("material_transfers_in", "material_id", "t.quantity", "NULL"),
	{ledger.KindMaterial, ledger.CategoryTransferOut}:   flowSource("material_transfers_out", "material_id", "t.quantity", "NULL"),
	{ledger.KindMaterial, ledger.CategoryUsageOut}:      flowSource("material_usage", "material_id", "t.quantity", "t.cost"),
	{ledger.KindMaterial, ledger.CategoryDamageOut}:     flowSource("damaged_materials", "material_id", "t.quantity", "t.cost"),

	{ledger.KindProduct, ledger.CategoryOpening}:          openingSource("product_inventory", "product_id"),
	{ledger.KindProduct, ledger.CategoryClosing}:          closingSource("product_closing_stock", "product_id"),
	{ledger.KindProduct, ledger.CategoryProductionIn}:     flowSource("production", "product_id", "COALESCE(t.yield, t.quantity)", "NULL"),
	{ledger.KindProduct, ledger.CategoryTransferIn}:       flowSource("product_transfers_in", "product_id", "t.quantity", "NULL"),
	{ledger.KindProduct, ledger.CategoryTransferOut}:      flowSource("product_transfers_out", "product_id", "t.quantity", "NULL"),
	{ledger.KindProduct, ledger.CategoryDamageOut}:        flowSource("product_damages", "product_id", "t.quantity", "t.cost"),
	{ledger.KindProduct, ledger.CategoryComplimentaryOut}: flowSource("complimentary_products", "product_id", "t.quantity", "t.cost"),
	{ledger.KindProduct, ledger.CategorySalesOut}: {
		table:      "sale_items si",
		name:       "sale_items",
		join:       "sales s ON s.id = si.sale_id",
		idCol:      "si.id",
		entityCol:  "si.product_id",
		branchCol:  "s.branch_id",
		createdCol: "s.created_at",
		quantity:   "si.quantity",
		cost:       "si.total_cost",
		opening:    "NULL",
		closing:    "NULL",
	},
}

// SourceTables lists every movement table, for the seed loader and the
// change-notification triggers.
func SourceTables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, kind := range []ledger.EntityKind{ledger.KindMaterial, ledger.KindProduct} {
		for _, cat := range ledger.CategoriesOf(kind) {
			s, ok := sources[sourceKey{kind, cat}]
			if !ok || seen[s.name] {
				continue
			}
			seen[s.name] = true
			out = append(out, s.name)
		}
	}
	return out
}
