package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
)

// Row types are exported so their embedded headers stay readable through
// reflection when converted to COPY rows.

type RowHead struct {
	ID        id.ID     `db:"id"`
	BranchID  id.ID     `db:"branch_id"`
	CreatedAt time.Time `db:"created_at"`
}

type BranchRow struct {
	ID        id.ID     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type MaterialRow struct {
	ID           id.ID           `db:"id"`
	Name         string          `db:"name"`
	Unit         string          `db:"unit"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	MinimumStock decimal.Decimal `db:"minimum_stock"`
	CreatedAt    time.Time       `db:"created_at"`
}

type ProductRow struct {
	ID        id.ID           `db:"id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
}

type RecipeRow struct {
	ID           id.ID           `db:"id"`
	ProductID    id.ID           `db:"product_id"`
	Name         string          `db:"name"`
	UnitCost     decimal.Decimal `db:"unit_cost"`
	SellingPrice decimal.Decimal `db:"selling_price"`
	CreatedAt    time.Time       `db:"created_at"`
}

type MaterialMove struct {
	RowHead
	MaterialID id.ID           `db:"material_id"`
	Quantity   decimal.Decimal `db:"quantity"`
}

type MaterialCostedMove struct {
	MaterialMove
	Cost decimal.Decimal `db:"cost"`
}

type MaterialOpening struct {
	MaterialMove
	OpeningStock decimal.Decimal `db:"opening_stock"`
}

type MaterialClosing struct {
	MaterialMove
	ClosingStock decimal.Decimal `db:"closing_stock"`
}

type ProductMove struct {
	RowHead
	ProductID id.ID           `db:"product_id"`
	Quantity  decimal.Decimal `db:"quantity"`
}

type ProductCostedMove struct {
	ProductMove
	Cost decimal.Decimal `db:"cost"`
}

type ProductOpening struct {
	ProductMove
	OpeningStock decimal.Decimal `db:"opening_stock"`
}

type ProductClosing struct {
	ProductMove
	ClosingStock decimal.Decimal `db:"closing_stock"`
}

type ProductionRow struct {
	ProductMove
	Yield *decimal.Decimal `db:"yield"`
}

type SaleRow struct {
	RowHead
}

type SaleItemRow struct {
	ID        id.ID           `db:"id"`
	SaleID    id.ID           `db:"sale_id"`
	ProductID id.ID           `db:"product_id"`
	Quantity  decimal.Decimal `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal"`
	TotalCost decimal.Decimal `db:"total_cost"`
	CreatedAt time.Time       `db:"created_at"`
}

type ImprestRow struct {
	RowHead
	Cost decimal.Decimal `db:"cost"`
}

// dataset is a generated bakery history.
type dataset struct {
	branches  []BranchRow
	materials []MaterialRow
	products  []ProductRow
	recipes   []RecipeRow

	materialOpenings []MaterialOpening
	materialClosings []MaterialClosing
	procurements     []MaterialCostedMove
	materialIn       []MaterialMove
	materialOut      []MaterialMove
	usage            []MaterialCostedMove
	materialDamages  []MaterialCostedMove

	productOpenings []ProductOpening
	productClosings []ProductClosing
	production      []ProductionRow
	productIn       []ProductMove
	productOut      []ProductMove
	productDamages  []ProductCostedMove
	complimentary   []ProductCostedMove
	sales           []SaleRow
	saleItems       []SaleItemRow

	imprest []ImprestRow
}

// tableLoad is one COPY into table.
type tableLoad struct {
	table   string
	columns []string
	rows    [][]any
}

func load[T any](table string, items []T) tableLoad {
	return tableLoad{table: table, columns: postgres.ExtractDBColumns[T](), rows: postgres.CopyRows(items)}
}

// loads returns the COPY batches, reference tables first.
func (d *dataset) loads() []tableLoad {
	return []tableLoad{
		load("branches", d.branches),
		load("materials", d.materials),
		load("products", d.products),
		load("recipes", d.recipes),
		load("inventory", d.materialOpenings),
		load("material_closing_stock", d.materialClosings),
		load("procurement_supplied", d.procurements),
		load("material_transfers_in", d.materialIn),
		load("material_transfers_out", d.materialOut),
		load("material_usage", d.usage),
		load("damaged_materials", d.materialDamages),
		load("product_inventory", d.productOpenings),
		load("product_closing_stock", d.productClosings),
		load("production", d.production),
		load("product_transfers_in", d.productIn),
		load("product_transfers_out", d.productOut),
		load("product_damages", d.productDamages),
		load("complimentary_products", d.complimentary),
		load("sales", d.sales),
		load("sale_items", d.saleItems),
		load("imprest_supplied", d.imprest),
	}
}

type materialSeed struct {
	name    string
	unit    string
	price   string
	minimum string
	opening int
	usage   [2]int // daily usage range
	restock [2]int
}

type productSeed struct {
	name     string
	price    string
	unitCost string
	opening  int
	batch    [2]int // daily production range
}

var (
	branchNames   = []string{"Ikeja", "Lekki", "Yaba"}
	materialSeeds = []materialSeed{
		{"Flour", "kg", "1200", "150", 400, [2]int{40, 80}, [2]int{150, 250}},
		{"Sugar", "kg", "900", "40", 120, [2]int{8, 20}, [2]int{40, 80}},
		{"Butter", "kg", "4500", "20", 60, [2]int{5, 12}, [2]int{20, 40}},
		{"Yeast", "g", "12", "500", 2000, [2]int{150, 300}, [2]int{800, 1500}},
	}
	productSeeds = []productSeed{
		{"Agege Bread", "1500", "650", 30, [2]int{60, 120}},
		{"Meat Pie", "800", "420", 20, [2]int{40, 80}},
		{"Doughnut", "500", "180", 25, [2]int{50, 90}},
	}
)

// generator builds a consistent history: every closing row equals the
// running balance of its pair unless a drift is injected.
type generator struct {
	rnd   *rand.Rand
	start time.Time
	days  int
	out   *dataset

	materialBalance map[[2]id.ID]types.Quantity // (branch, material)
	productBalance  map[[2]id.ID]types.Quantity // (branch, product)
}

func generate(start time.Time, days int, seed uint64) *dataset {
	g := &generator{
		rnd:             rand.New(rand.NewPCG(seed, seed^0x5eed)),
		start:           start,
		days:            days,
		out:             &dataset{},
		materialBalance: make(map[[2]id.ID]types.Quantity),
		productBalance:  make(map[[2]id.ID]types.Quantity),
	}
	g.reference()
	g.openings()
	for d := 0; d < days; d++ {
		g.day(d)
	}
	return g.out
}

func (g *generator) at(day, hour, minute int) time.Time {
	return g.start.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func (g *generator) between(r [2]int) int {
	return r[0] + g.rnd.IntN(r[1]-r[0]+1)
}

func (g *generator) reference() {
	created := g.start.AddDate(0, 0, -1)
	for _, name := range branchNames {
		g.out.branches = append(g.out.branches, BranchRow{ID: id.New(), Name: name, CreatedAt: created})
	}
	for _, m := range materialSeeds {
		g.out.materials = append(g.out.materials, MaterialRow{
			ID:           id.New(),
			Name:         m.name,
			Unit:         m.unit,
			UnitPrice:    decimal.RequireFromString(m.price),
			MinimumStock: decimal.RequireFromString(m.minimum),
			CreatedAt:    created,
		})
	}
	for _, p := range productSeeds {
		product := ProductRow{ID: id.New(), Name: p.name, Price: decimal.RequireFromString(p.price), CreatedAt: created}
		g.out.products = append(g.out.products, product)
		g.out.recipes = append(g.out.recipes, RecipeRow{
			ID:           id.New(),
			ProductID:    product.ID,
			Name:         p.name,
			UnitCost:     decimal.RequireFromString(p.unitCost),
			SellingPrice: product.Price,
			CreatedAt:    created,
		})
	}
}

func (g *generator) head(branch id.ID, when time.Time) RowHead {
	return RowHead{ID: id.New(), BranchID: branch, CreatedAt: when}
}

func (g *generator) openings() {
	when := g.at(0, 6, 0)
	for _, b := range g.out.branches {
		for i, m := range g.out.materials {
			q := types.NewQuantityFromInt64(int64(materialSeeds[i].opening))
			g.materialBalance[[2]id.ID{b.ID, m.ID}] = q
			g.out.materialOpenings = append(g.out.materialOpenings, MaterialOpening{
				MaterialMove: MaterialMove{RowHead: g.head(b.ID, when), MaterialID: m.ID, Quantity: q.Decimal()},
				OpeningStock: q.Decimal(),
			})
		}
		for i, p := range g.out.products {
			q := types.NewQuantityFromInt64(int64(productSeeds[i].opening))
			g.productBalance[[2]id.ID{b.ID, p.ID}] = q
			g.out.productOpenings = append(g.out.productOpenings, ProductOpening{
				ProductMove:  ProductMove{RowHead: g.head(b.ID, when), ProductID: p.ID, Quantity: q.Decimal()},
				OpeningStock: q.Decimal(),
			})
		}
	}
}

func (g *generator) day(d int) {
	for bi, b := range g.out.branches {
		g.materialsDay(d, b.ID)
		g.productsDay(d, bi, b.ID)
		if d%2 == 0 {
			g.out.imprest = append(g.out.imprest, ImprestRow{
				RowHead: g.head(b.ID, g.at(d, 15, 0)),
				Cost:    decimal.NewFromInt(int64(500 + 250*g.rnd.IntN(7))),
			})
		}
	}
	if d%7 == 3 && len(g.out.branches) > 1 {
		g.transfer(d, g.out.branches[0].ID, g.out.branches[1].ID)
	}
	g.closings(d)
}

func (g *generator) materialsDay(d int, branch id.ID) {
	for i, m := range g.out.materials {
		seed := materialSeeds[i]
		key := [2]id.ID{branch, m.ID}

		if d%3 == 0 {
			q := types.NewQuantityFromInt64(int64(g.between(seed.restock)))
			g.materialBalance[key] += q
			g.out.procurements = append(g.out.procurements, MaterialCostedMove{
				MaterialMove: MaterialMove{RowHead: g.head(branch, g.at(d, 9, i)), MaterialID: m.ID, Quantity: q.Decimal()},
				Cost:         q.Value(m.UnitPrice),
			})
		}

		q := min(types.NewQuantityFromInt64(int64(g.between(seed.usage))), g.materialBalance[key])
		if q.IsPositive() {
			g.materialBalance[key] -= q
			g.out.usage = append(g.out.usage, MaterialCostedMove{
				MaterialMove: MaterialMove{RowHead: g.head(branch, g.at(d, 10, i)), MaterialID: m.ID, Quantity: q.Decimal()},
				Cost:         q.Value(m.UnitPrice),
			})
		}

		if d%5 == 4 {
			q := min(types.NewQuantityFromInt64(int64(1+g.rnd.IntN(3))), g.materialBalance[key])
			if q.IsPositive() {
				g.materialBalance[key] -= q
				g.out.materialDamages = append(g.out.materialDamages, MaterialCostedMove{
					MaterialMove: MaterialMove{RowHead: g.head(branch, g.at(d, 11, i)), MaterialID: m.ID, Quantity: q.Decimal()},
					Cost:         q.Value(m.UnitPrice),
				})
			}
		}
	}
}

func (g *generator) productsDay(d, branchIdx int, branch id.ID) {
	for i, p := range g.out.products {
		seed := productSeeds[i]
		recipe := g.out.recipes[i]
		key := [2]id.ID{branch, p.ID}

		planned := types.NewQuantityFromInt64(int64(g.between(seed.batch)))
		row := ProductionRow{ProductMove: ProductMove{RowHead: g.head(branch, g.at(d, 7, i)), ProductID: p.ID, Quantity: planned.Decimal()}}
		produced := planned
		// Some batches record an actual yield below the planned quantity.
		if (d+i+branchIdx)%3 == 0 {
			produced = planned - types.NewQuantityFromInt64(int64(1+g.rnd.IntN(3)))
			y := produced.Decimal()
			row.Yield = &y
		}
		g.productBalance[key] += produced
		g.out.production = append(g.out.production, row)

		if (d+i)%4 == 1 {
			q := min(types.NewQuantityFromInt64(1), g.productBalance[key])
			if q.IsPositive() {
				g.productBalance[key] -= q
				g.out.complimentary = append(g.out.complimentary, ProductCostedMove{
					ProductMove: ProductMove{RowHead: g.head(branch, g.at(d, 12, i)), ProductID: p.ID, Quantity: q.Decimal()},
					Cost:        q.Value(recipe.UnitCost),
				})
			}
		}

		if (d+i)%6 == 5 {
			q := min(types.NewQuantityFromInt64(int64(1+g.rnd.IntN(2))), g.productBalance[key])
			if q.IsPositive() {
				g.productBalance[key] -= q
				g.out.productDamages = append(g.out.productDamages, ProductCostedMove{
					ProductMove: ProductMove{RowHead: g.head(branch, g.at(d, 12, 30+i)), ProductID: p.ID, Quantity: q.Decimal()},
					Cost:        q.Value(recipe.UnitCost),
				})
			}
		}
	}

	for s := 0; s < 3+g.rnd.IntN(4); s++ {
		sale := SaleRow{RowHead: g.head(branch, g.at(d, 13+s, g.rnd.IntN(60)))}
		var items int
		for i, p := range g.out.products {
			if g.rnd.IntN(2) == 0 {
				continue
			}
			key := [2]id.ID{branch, p.ID}
			q := min(types.NewQuantityFromInt64(int64(1+g.rnd.IntN(12))), g.productBalance[key])
			if !q.IsPositive() {
				continue
			}
			g.productBalance[key] -= q
			items++
			g.out.saleItems = append(g.out.saleItems, SaleItemRow{
				ID:        id.New(),
				SaleID:    sale.ID,
				ProductID: p.ID,
				Quantity:  q.Decimal(),
				UnitPrice: p.Price,
				Subtotal:  q.Value(p.Price),
				TotalCost: q.Value(g.out.recipes[i].UnitCost),
				CreatedAt: sale.CreatedAt,
			})
		}
		if items > 0 {
			g.out.sales = append(g.out.sales, sale)
		}
	}
}

// transfer moves some of the first material and product from one branch
// to another.
func (g *generator) transfer(d int, from, to id.ID) {
	when := g.at(d, 16, 0)

	m := g.out.materials[0]
	if q := min(types.NewQuantityFromInt64(25), g.materialBalance[[2]id.ID{from, m.ID}]); q.IsPositive() {
		g.materialBalance[[2]id.ID{from, m.ID}] -= q
		g.materialBalance[[2]id.ID{to, m.ID}] += q
		g.out.materialOut = append(g.out.materialOut, MaterialMove{RowHead: g.head(from, when), MaterialID: m.ID, Quantity: q.Decimal()})
		g.out.materialIn = append(g.out.materialIn, MaterialMove{RowHead: g.head(to, when.Add(time.Minute)), MaterialID: m.ID, Quantity: q.Decimal()})
	}

	p := g.out.products[0]
	if q := min(types.NewQuantityFromInt64(10), g.productBalance[[2]id.ID{from, p.ID}]); q.IsPositive() {
		g.productBalance[[2]id.ID{from, p.ID}] -= q
		g.productBalance[[2]id.ID{to, p.ID}] += q
		g.out.productOut = append(g.out.productOut, ProductMove{RowHead: g.head(from, when), ProductID: p.ID, Quantity: q.Decimal()})
		g.out.productIn = append(g.out.productIn, ProductMove{RowHead: g.head(to, when.Add(time.Minute)), ProductID: p.ID, Quantity: q.Decimal()})
	}
}

func (g *generator) closings(d int) {
	when := g.at(d, 21, 0)
	for _, b := range g.out.branches {
		for _, m := range g.out.materials {
			q := g.materialBalance[[2]id.ID{b.ID, m.ID}]
			g.out.materialClosings = append(g.out.materialClosings, MaterialClosing{
				MaterialMove: MaterialMove{RowHead: g.head(b.ID, when), MaterialID: m.ID, Quantity: q.Decimal()},
				ClosingStock: q.Decimal(),
			})
		}
		for _, p := range g.out.products {
			q := g.productBalance[[2]id.ID{b.ID, p.ID}]
			g.out.productClosings = append(g.out.productClosings, ProductClosing{
				ProductMove:  ProductMove{RowHead: g.head(b.ID, when), ProductID: p.ID, Quantity: q.Decimal()},
				ClosingStock: q.Decimal(),
			})
		}
	}
}

// injectDrift miscounts one closing row so the reconcile job has something
// to report.
func (d *dataset) injectDrift(delta int64) (MaterialClosing, error) {
	if len(d.materialClosings) == 0 {
		return MaterialClosing{}, fmt.Errorf("no closing rows to alter")
	}
	i := len(d.materialClosings) / 2
	row := &d.materialClosings[i]
	row.Quantity = row.Quantity.Add(decimal.NewFromInt(delta))
	row.ClosingStock = row.Quantity
	return *row, nil
}
