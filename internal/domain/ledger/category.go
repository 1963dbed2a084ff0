// Package ledger computes point-in-time and range-aggregated stock balances
// for materials and products from per-category movement records.
//
// The engine is pure: callers fetch records, reference data and sales lines
// and hand them in. Nothing here performs I/O or keeps state between calls.
package ledger

import "fmt"

// EntityKind distinguishes raw materials from finished products.
type EntityKind string

const (
	KindMaterial EntityKind = "material"
	KindProduct  EntityKind = "product"
)

func (k EntityKind) Valid() bool {
	return k == KindMaterial || k == KindProduct
}

// ParseEntityKind parses a kind name.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}

// Category identifies the movement table a record originates from and
// therefore its sign and the aggregate bucket it feeds.
type Category string

const (
	CategoryOpening          Category = "opening"
	CategoryClosing          Category = "closing"
	CategoryProcurementIn    Category = "procurement_in"
	CategoryTransferIn       Category = "transfer_in"
	CategoryTransferOut      Category = "transfer_out"
	CategoryProductionIn     Category = "production_in"
	CategoryUsageOut         Category = "usage_out"
	CategoryDamageOut        Category = "damage_out"
	CategorySalesOut         Category = "sales_out"
	CategoryComplimentaryOut Category = "complimentary_out"
)

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategoryOpening,
	CategoryClosing,
	CategoryProcurementIn,
	CategoryTransferIn,
	CategoryTransferOut,
	CategoryProductionIn,
	CategoryUsageOut,
	CategoryDamageOut,
	CategorySalesOut,
	CategoryComplimentaryOut,
}

// IsSnapshot reports whether rows of c carry a stored stock level rather
// than a movement delta.
func (c Category) IsSnapshot() bool {
	return c == CategoryOpening || c == CategoryClosing
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Sign is the direction a category moves the balance in.
type Sign int

const (
	Inflow  Sign = 1
	Outflow Sign = -1
)

// SignMap assigns a sign to each category that should contribute to a sum.
// Categories missing from the map contribute nothing.
type SignMap map[Category]Sign

// DefaultSigns is the fixed business sign convention for stock balances.
// Closing snapshots are deliberately absent: they restate a balance rather
// than move it.
var DefaultSigns = SignMap{
	CategoryOpening:          Inflow,
	CategoryProcurementIn:    Inflow,
	CategoryTransferIn:       Inflow,
	CategoryProductionIn:     Inflow,
	CategoryTransferOut:      Outflow,
	CategoryUsageOut:         Outflow,
	CategoryDamageOut:        Outflow,
	CategorySalesOut:         Outflow,
	CategoryComplimentaryOut: Outflow,
}

// Bucket sign maps used by the range aggregator. Each selects only the
// categories its bucket is made of, so the summed magnitudes stay positive.
var (
	DamageSigns      = SignMap{CategoryDamageOut: Inflow}
	StockInSigns     = SignMap{CategoryProcurementIn: Inflow, CategoryTransferIn: Inflow, CategoryProductionIn: Inflow}
	TransferOutSigns = SignMap{CategoryTransferOut: Inflow}
	DeltaSigns       = withoutSnapshots(DefaultSigns)
)

// Only returns a copy of m restricted to cats.
func (m SignMap) Only(cats ...Category) SignMap {
	out := make(SignMap, len(cats))
	for _, c := range cats {
		if s, ok := m[c]; ok {
			out[c] = s
		}
	}
	return out
}

func withoutSnapshots(m SignMap) SignMap {
	out := make(SignMap, len(m))
	for c, s := range m {
		if !c.IsSnapshot() {
			out[c] = s
		}
	}
	return out
}

// CategoriesOf lists the categories that exist for kind. Materials are
// procured and consumed; products are produced, sold and given away.
func CategoriesOf(kind EntityKind) []Category {
	if kind == KindMaterial {
		return []Category{
			CategoryOpening, CategoryClosing, CategoryProcurementIn, CategoryTransferIn,
			CategoryTransferOut, CategoryUsageOut, CategoryDamageOut,
		}
	}
	return []Category{
		CategoryOpening, CategoryClosing, CategoryProductionIn, CategoryTransferIn,
		CategoryTransferOut, CategoryDamageOut, CategoryComplimentaryOut, CategorySalesOut,
	}
}
