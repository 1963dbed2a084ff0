package ledger

import (
	"fmt"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// Basis selects which price a report values stock at.
type Basis string

const (
	BasisCost    Basis = "cost"
	BasisSelling Basis = "selling"
)

func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case BasisCost, BasisSelling:
		return Basis(s), nil
	}
	return "", fmt.Errorf("unknown valuation basis %q", s)
}

// Material is a raw-material reference row.
type Material struct {
	ID           id.ID          `json:"id"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	UnitPrice    *types.Money   `json:"unitPrice,omitempty"`
	MinimumStock types.Quantity `json:"minimumStock"`
}

// Product is a finished-goods reference row.
type Product struct {
	ID    id.ID        `json:"id"`
	Name  string       `json:"name"`
	Price *types.Money `json:"price,omitempty"`
}

// Recipe carries the costing of one product.
type Recipe struct {
	ProductID    id.ID        `json:"productId"`
	Name         string       `json:"name"`
	UnitCost     *types.Money `json:"unitCost,omitempty"`
	SellingPrice *types.Money `json:"sellingPrice,omitempty"`
}

// Branch is a physical location.
type Branch struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}

// PriceSource resolves unit prices and display names for entities.
type PriceSource interface {
	PriceOf(entityID id.ID, kind EntityKind, basis Basis) (types.Money, bool)
	NameOf(entityID id.ID, kind EntityKind) string
}

// Catalog is an immutable snapshot of the reference tables.
type Catalog struct {
	materials map[id.ID]Material
	products  map[id.ID]Product
	recipes   map[id.ID]Recipe
	branches  map[id.ID]Branch

	materialOrder []id.ID
	productOrder  []id.ID
	branchOrder   []id.ID
}

var _ PriceSource = (*Catalog)(nil)

// NewCatalog indexes the reference rows. When a product has several recipes
// the first one wins.
func NewCatalog(materials []Material, products []Product, recipes []Recipe, branches []Branch) *Catalog {
	c := &Catalog{
		materials: make(map[id.ID]Material, len(materials)),
		products:  make(map[id.ID]Product, len(products)),
		recipes:   make(map[id.ID]Recipe, len(recipes)),
		branches:  make(map[id.ID]Branch, len(branches)),
	}
	for _, m := range materials {
		if _, dup := c.materials[m.ID]; !dup {
			c.materialOrder = append(c.materialOrder, m.ID)
		}
		c.materials[m.ID] = m
	}
	for _, p := range products {
		if _, dup := c.products[p.ID]; !dup {
			c.productOrder = append(c.productOrder, p.ID)
		}
		c.products[p.ID] = p
	}
	for _, r := range recipes {
		if _, dup := c.recipes[r.ProductID]; !dup {
			c.recipes[r.ProductID] = r
		}
	}
	for _, b := range branches {
		if _, dup := c.branches[b.ID]; !dup {
			c.branchOrder = append(c.branchOrder, b.ID)
		}
		c.branches[b.ID] = b
	}
	return c
}

// PriceOf returns the unit price of an entity under basis. ok is false when
// the reference data has no price for that basis; the returned price is then
// zero. A missing price never falls back to the other basis.
//
// Materials are priced at unit_price on either basis. Products are priced at
// the recipe unit cost (cost basis) or at the product price, then the recipe
// selling price (selling basis).
func (c *Catalog) PriceOf(entityID id.ID, kind EntityKind, basis Basis) (types.Money, bool) {
	switch kind {
	case KindMaterial:
		if m, ok := c.materials[entityID]; ok && m.UnitPrice != nil {
			return *m.UnitPrice, true
		}
	case KindProduct:
		recipe, hasRecipe := c.recipes[entityID]
		switch basis {
		case BasisCost:
			if hasRecipe && recipe.UnitCost != nil {
				return *recipe.UnitCost, true
			}
		case BasisSelling:
			if p, ok := c.products[entityID]; ok && p.Price != nil {
				return *p.Price, true
			}
			if hasRecipe && recipe.SellingPrice != nil {
				return *recipe.SellingPrice, true
			}
		}
	}
	return types.Zero(), false
}

// NameOf returns the display name, or an empty string when unknown.
func (c *Catalog) NameOf(entityID id.ID, kind EntityKind) string {
	if kind == KindMaterial {
		return c.materials[entityID].Name
	}
	if p, ok := c.products[entityID]; ok {
		return p.Name
	}
	return c.recipes[entityID].Name
}

func (c *Catalog) Material(materialID id.ID) (Material, bool) {
	m, ok := c.materials[materialID]
	return m, ok
}

func (c *Catalog) Recipe(productID id.ID) (Recipe, bool) {
	r, ok := c.recipes[productID]
	return r, ok
}

func (c *Catalog) Branch(branchID id.ID) (Branch, bool) {
	b, ok := c.branches[branchID]
	return b, ok
}

// Materials returns materials in insertion order.
func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.materialOrder))
	for _, mid := range c.materialOrder {
		out = append(out, c.materials[mid])
	}
	return out
}

// Products returns products in insertion order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.productOrder))
	for _, pid := range c.productOrder {
		out = append(out, c.products[pid])
	}
	return out
}

// Branches returns branches in insertion order.
func (c *Catalog) Branches() []Branch {
	out := make([]Branch, 0, len(c.branchOrder))
	for _, bid := range c.branchOrder {
		out = append(out, c.branches[bid])
	}
	return out
}
