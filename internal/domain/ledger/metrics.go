package ledger

import (
	"time"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

// SaleLine is one sold product line.
type SaleLine struct {
	SaleID    id.ID          `json:"saleId"`
	ProductID id.ID          `json:"productId"`
	BranchID  id.ID          `json:"branchId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	Subtotal  types.Money    `json:"subtotal"`
	TotalCost types.Money    `json:"totalCost"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Costed is anything carrying a cost that reduces profit.
type Costed interface {
	CostBranch() id.ID
	// CostEntity is the material or product the cost belongs to; id.Nil for
	// costs not tied to an entity.
	CostEntity() id.ID
	CostValue() types.Money
}

// CostBucket is one category of costs, such as damages or imprest supplies.
type CostBucket []Costed

func (f Flow) CostBranch() id.ID { return f.BranchID }
func (f Flow) CostEntity() id.ID { return f.EntityID }

// Expense is a cost not tied to a stock movement (imprest supplies).
type Expense struct {
	RowID     id.ID       `json:"rowId"`
	BranchID  id.ID       `json:"branchId"`
	Cost      types.Money `json:"cost"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (e Expense) CostBranch() id.ID      { return e.BranchID }
func (e Expense) CostEntity() id.ID      { return id.Nil() }
func (e Expense) CostValue() types.Money { return e.Cost }

// FlowCosts collects the flow rows of records into a bucket.
func FlowCosts(records []Record) CostBucket {
	bucket := make(CostBucket, 0, len(records))
	for _, r := range records {
		if f, ok := r.(Flow); ok {
			bucket = append(bucket, f)
		}
	}
	return bucket
}

// ExpenseCosts wraps expenses into a bucket.
func ExpenseCosts(expenses []Expense) CostBucket {
	bucket := make(CostBucket, len(expenses))
	for i, e := range expenses {
		bucket[i] = e
	}
	return bucket
}

// Metrics are the headline figures of the accounts screen.
type Metrics struct {
	Revenue            types.Money    `json:"revenue"`
	Cost               types.Money    `json:"cost"`
	Profit             types.Money    `json:"profit"`
	CostToRevenueRatio types.Money    `json:"costToRevenueRatio"`
	TotalItems         types.Quantity `json:"totalItems"`
}

// ComposeMetrics combines sales with additional cost buckets. The ratio is
// cost/revenue*100, and 0 when revenue is not positive.
func ComposeMetrics(sales []SaleLine, buckets ...CostBucket) Metrics {
	m := Metrics{Revenue: types.Zero(), Cost: types.Zero()}
	for _, s := range sales {
		m.Revenue = m.Revenue.Add(s.Subtotal)
		m.Cost = m.Cost.Add(s.TotalCost)
		m.TotalItems += s.Quantity
	}
	for _, b := range buckets {
		for _, c := range b {
			m.Cost = m.Cost.Add(c.CostValue())
		}
	}
	m.Profit = m.Revenue.Sub(m.Cost)
	m.CostToRevenueRatio = types.Percent(m.Cost, m.Revenue)
	return m
}
