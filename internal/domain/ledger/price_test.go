package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

func TestCatalog_PriceOf(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name   string
		kind   EntityKind
		entity id.ID
		basis  Basis
		want   string
		found  bool
	}{
		{"material cost", KindMaterial, flour, BasisCost, "800", true},
		{"material selling", KindMaterial, flour, BasisSelling, "800", true},
		{"material without price", KindMaterial, sugar, BasisCost, "0", false},
		{"product cost from recipe", KindProduct, bread, BasisCost, "600", true},
		{"product selling prefers product price", KindProduct, bread, BasisSelling, "1500", true},
		{"cost only product has no selling price", KindProduct, cake, BasisSelling, "0", false},
		{"unknown product", KindProduct, sugar, BasisCost, "0", false},
		{"material id asked as product", KindProduct, flour, BasisSelling, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.PriceOf(tt.entity, tt.kind, tt.basis)
			assert.Equal(t, tt.found, ok)
			assert.True(t, got.Equal(types.MustMoney(tt.want)), got.String())
		})
	}
}

func TestCatalog_PriceBasisSeparation(t *testing.T) {
	onlySelling := NewCatalog(nil, []Product{{ID: bread, Name: "Bread", Price: mp("1500")}}, nil, nil)
	got, ok := onlySelling.PriceOf(bread, KindProduct, BasisCost)
	assert.False(t, ok)
	assert.True(t, got.IsZero())

	onlyCost := NewCatalog(nil, []Product{{ID: bread, Name: "Bread"}}, []Recipe{{ProductID: bread, UnitCost: mp("600")}}, nil)
	got, ok = onlyCost.PriceOf(bread, KindProduct, BasisSelling)
	assert.False(t, ok)
	assert.True(t, got.IsZero())

	recipeSelling := NewCatalog(nil, []Product{{ID: bread, Name: "Bread"}}, []Recipe{{ProductID: bread, UnitCost: mp("600"), SellingPrice: mp("1400")}}, nil)
	got, ok = recipeSelling.PriceOf(bread, KindProduct, BasisSelling)
	assert.True(t, ok)
	assert.True(t, got.Equal(types.MustMoney("1400")))
}

func TestCatalog_Lookups(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, "Flour", c.NameOf(flour, KindMaterial))
	assert.Equal(t, "Bread", c.NameOf(bread, KindProduct))
	assert.Equal(t, "", c.NameOf(flour, KindProduct))
	assert.Len(t, c.Materials(), 2)
	assert.Equal(t, "Ikeja", c.Branches()[0].Name)

	_, ok := c.Recipe(cake)
	assert.True(t, ok)
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("cost")
	assert.NoError(t, err)
	assert.Equal(t, BasisCost, b)
	_, err = ParseBasis("retail")
	assert.Error(t, err)
}
