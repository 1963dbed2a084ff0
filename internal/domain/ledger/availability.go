package ledger

import (
	"slices"
	"strings"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// CheckAvailable validates a usage request against the current quantity.
func CheckAvailable(current, requested types.Quantity, entityID id.ID) error {
	if !requested.IsPositive() {
		return apperror.NewValidation("quantity must be greater than zero").
			WithDetail("entity_id", entityID.String()).
			WithDetail("requested", requested.String())
	}
	if requested > current {
		return apperror.NewInsufficientStock(entityID.String(), requested.String(), current.String())
	}
	return nil
}

// StockLine is the current quantity of one entity.
type StockLine struct {
	Kind       EntityKind     `json:"kind"`
	EntityID   id.ID          `json:"entityId"`
	EntityName string         `json:"entityName"`
	Current    types.Quantity `json:"current"`
	Minimum    types.Quantity `json:"minimum"`
	LowStock   bool           `json:"lowStock"`
}

// StockLevels lists current quantities for every catalog entity of kind,
// plus entities that only appear in levels. Materials are flagged low when
// the current quantity is at or below their minimum stock.
func StockLevels(kind EntityKind, levels map[id.ID]types.Quantity, catalog *Catalog) []StockLine {
	seen := make(map[id.ID]bool)
	var out []StockLine
	add := func(entityID id.ID) {
		if seen[entityID] {
			return
		}
		seen[entityID] = true
		line := StockLine{
			Kind:       kind,
			EntityID:   entityID,
			EntityName: catalog.NameOf(entityID, kind),
			Current:    levels[entityID],
		}
		if kind == KindMaterial {
			if m, ok := catalog.Material(entityID); ok {
				line.Minimum = m.MinimumStock
				line.LowStock = line.Current <= m.MinimumStock
			}
		}
		out = append(out, line)
	}

	if kind == KindMaterial {
		for _, m := range catalog.Materials() {
			add(m.ID)
		}
	} else {
		for _, p := range catalog.Products() {
			add(p.ID)
		}
	}
	for entityID := range levels {
		add(entityID)
	}

	slices.SortFunc(out, func(a, b StockLine) int {
		if c := strings.Compare(a.EntityName, b.EntityName); c != 0 {
			return c
		}
		return strings.Compare(a.EntityID.String(), b.EntityID.String())
	})
	return out
}

// LowStock returns the materials at or below their minimum stock.
func LowStock(levels map[id.ID]types.Quantity, catalog *Catalog) []StockLine {
	var out []StockLine
	for _, line := range StockLevels(KindMaterial, levels, catalog) {
		if line.LowStock {
			out = append(out, line)
		}
	}
	return out
}
