package ledger

import (
	"slices"
	"strings"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// DefaultRatioThreshold is the cost ratio, in percent, above which a figure
// is shown as unhealthy.
var DefaultRatioThreshold = types.NewMoney(75)

// BranchMetrics are the metrics of one branch.
type BranchMetrics struct {
	BranchID   id.ID  `json:"branchId"`
	BranchName string `json:"branchName"`
	Metrics
	AboveThreshold bool `json:"aboveThreshold"`
}

// BranchPerformance composes metrics per branch, most profitable first.
// Every listed branch appears even without sales.
func BranchPerformance(branches []Branch, threshold types.Money, sales []SaleLine, buckets ...CostBucket) []BranchMetrics {
	salesBy := make(map[id.ID][]SaleLine)
	for _, s := range sales {
		salesBy[s.BranchID] = append(salesBy[s.BranchID], s)
	}
	bucketsBy := make(map[id.ID][]CostBucket)
	for _, b := range buckets {
		split := make(map[id.ID]CostBucket)
		for _, c := range b {
			split[c.CostBranch()] = append(split[c.CostBranch()], c)
		}
		for branchID, part := range split {
			bucketsBy[branchID] = append(bucketsBy[branchID], part)
		}
	}

	out := make([]BranchMetrics, 0, len(branches))
	for _, br := range branches {
		m := ComposeMetrics(salesBy[br.ID], bucketsBy[br.ID]...)
		out = append(out, BranchMetrics{
			BranchID:       br.ID,
			BranchName:     br.Name,
			Metrics:        m,
			AboveThreshold: m.CostToRevenueRatio.GreaterThan(threshold),
		})
	}
	slices.SortStableFunc(out, func(a, b BranchMetrics) int {
		if c := b.Profit.Cmp(a.Profit); c != 0 {
			return c
		}
		return strings.Compare(a.BranchName, b.BranchName)
	})
	return out
}

// ProductMetrics are the cost-efficiency figures of one product.
type ProductMetrics struct {
	ProductID   id.ID          `json:"productId"`
	ProductName string         `json:"productName"`
	UnitsSold   types.Quantity `json:"unitsSold"`
	Revenue     types.Money    `json:"revenue"`
	Cost        types.Money    `json:"cost"`
	Profit      types.Money    `json:"profit"`
	// UCRR is recipe unit cost over recipe selling price, in percent.
	UCRR types.Money `json:"ucrr"`
	// ACRR is actual cost (sales, damages, giveaways) over revenue, in percent.
	ACRR        types.Money `json:"acrr"`
	UCRRFlagged bool        `json:"ucrrFlagged"`
	ACRRFlagged bool        `json:"acrrFlagged"`
}

// ProductPerformance computes UCRR and ACRR for every catalog product and
// for any product that appears only in sales. Buckets contribute the costs
// attributed to each product (damages, complimentary issues). Ratios are 0
// when their divisor is 0.
func ProductPerformance(catalog *Catalog, threshold types.Money, sales []SaleLine, buckets ...CostBucket) []ProductMetrics {
	rows := make(map[id.ID]*ProductMetrics)
	var order []id.ID
	row := func(productID id.ID) *ProductMetrics {
		if r, ok := rows[productID]; ok {
			return r
		}
		r := &ProductMetrics{
			ProductID:   productID,
			ProductName: catalog.NameOf(productID, KindProduct),
			Revenue:     types.Zero(),
			Cost:        types.Zero(),
		}
		rows[productID] = r
		order = append(order, productID)
		return r
	}

	for _, p := range catalog.Products() {
		row(p.ID)
	}
	for _, s := range sales {
		r := row(s.ProductID)
		r.UnitsSold += s.Quantity
		r.Revenue = r.Revenue.Add(s.Subtotal)
		r.Cost = r.Cost.Add(s.TotalCost)
	}
	for _, b := range buckets {
		for _, c := range b {
			if r, ok := rows[c.CostEntity()]; ok {
				r.Cost = r.Cost.Add(c.CostValue())
			}
		}
	}

	out := make([]ProductMetrics, 0, len(order))
	for _, pid := range order {
		r := rows[pid]
		r.Profit = r.Revenue.Sub(r.Cost)
		r.ACRR = types.Percent(r.Cost, r.Revenue)
		if recipe, ok := catalog.Recipe(pid); ok && recipe.UnitCost != nil && recipe.SellingPrice != nil {
			r.UCRR = types.Percent(*recipe.UnitCost, *recipe.SellingPrice)
		} else {
			r.UCRR = types.Zero()
		}
		r.ACRRFlagged = r.ACRR.GreaterThan(threshold)
		r.UCRRFlagged = r.UCRR.GreaterThan(threshold)
		out = append(out, *r)
	}
	slices.SortStableFunc(out, func(a, b ProductMetrics) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.ProductName, b.ProductName)
	})
	return out
}

// VolumeLine is the quantity sold of one product.
type VolumeLine struct {
	ProductID   id.ID          `json:"productId"`
	ProductName string         `json:"productName"`
	Quantity    types.Quantity `json:"quantity"`
}

// SalesVolume totals quantity sold per product, highest first.
func SalesVolume(catalog *Catalog, sales []SaleLine) []VolumeLine {
	totals := make(map[id.ID]types.Quantity)
	for _, s := range sales {
		totals[s.ProductID] += s.Quantity
	}
	out := make([]VolumeLine, 0, len(totals))
	for pid, q := range totals {
		out = append(out, VolumeLine{ProductID: pid, ProductName: catalog.NameOf(pid, KindProduct), Quantity: q})
	}
	slices.SortFunc(out, func(a, b VolumeLine) int {
		if a.Quantity != b.Quantity {
			if a.Quantity > b.Quantity {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.ProductName, b.ProductName); c != 0 {
			return c
		}
		return strings.Compare(a.ProductID.String(), b.ProductID.String())
	})
	return out
}
