// Package reports orchestrates ledger report computation: it fetches
// movement, sales and reference data concurrently, runs the ledger engine
// and caches results per filter.
package reports

import (
	"context"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
)

// MovementQuery selects the rows of one movement category.
type MovementQuery struct {
	Kind     ledger.EntityKind
	Category ledger.Category

	// Optional filters
	BranchID      *id.ID
	EntityID      *id.ID
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // inclusive
}

// SalesQuery selects sold lines, filtered on the parent sale.
type SalesQuery struct {
	BranchID      *id.ID
	ProductID     *id.ID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ExpenseQuery selects imprest supplies.
type ExpenseQuery struct {
	BranchID      *id.ID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Reference is the static reference data of one computation.
type Reference struct {
	Materials []ledger.Material
	Products  []ledger.Product
	Recipes   []ledger.Recipe
	Branches  []ledger.Branch
}

// Repository is the read side of the movement record store.
// Implementations return FETCH_FAILED app errors naming the table on
// upstream failure; an empty result is never an error.
type Repository interface {
	FetchMovements(ctx context.Context, q MovementQuery) ([]ledger.Record, error)
	FetchSales(ctx context.Context, q SalesQuery) ([]ledger.SaleLine, error)
	FetchExpenses(ctx context.Context, q ExpenseQuery) ([]ledger.Expense, error)
	FetchReference(ctx context.Context) (Reference, error)
}

// Cache stores computed reports. Keys must carry the full filter tuple.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}
