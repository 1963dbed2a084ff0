package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
)

var (
	flour  = id.MustParse("0190a000-0000-7000-8000-00000000f001")
	sugar  = id.MustParse("0190a000-0000-7000-8000-00000000f002")
	bread  = id.MustParse("0190a000-0000-7000-8000-00000000b001")
	cake   = id.MustParse("0190a000-0000-7000-8000-00000000b002")
	ikeja  = id.MustParse("0190a000-0000-7000-8000-0000000000a1")
	lekki  = id.MustParse("0190a000-0000-7000-8000-0000000000a2")
	rowSeq int
)

func nextRowID() id.ID {
	rowSeq++
	return id.MustParse(fmt.Sprintf("0190a000-0000-7000-9000-%012d", rowSeq))
}

func at(s string) time.Time {
	layout := "2006-01-02 15:04"
	if len(s) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func atp(s string) *time.Time {
	t := at(s)
	return &t
}

func q(s string) types.Quantity { return types.MustQuantity(s) }

func qp(s string) *types.Quantity {
	v := q(s)
	return &v
}

func mp(s string) *types.Money {
	v := types.MustMoney(s)
	return &v
}

func header(kind EntityKind, cat Category, entity, branch id.ID, when string) Header {
	return Header{
		RowID:     nextRowID(),
		Kind:      kind,
		EntityID:  entity,
		BranchID:  branch,
		Category:  cat,
		CreatedAt: at(when),
	}
}

func level(t *testing.T, kind EntityKind, cat Category, entity, branch id.ID, when, qty string, opening *types.Quantity) Record {
	t.Helper()
	r, err := NewStockLevel(header(kind, cat, entity, branch, when), q(qty), opening, nil)
	require.NoError(t, err)
	return r
}

func flow(t *testing.T, kind EntityKind, cat Category, entity, branch id.ID, when, qty string, balance *types.Quantity) Record {
	t.Helper()
	r, err := NewFlow(header(kind, cat, entity, branch, when), q(qty), nil, balance)
	require.NoError(t, err)
	return r
}

func costedFlow(t *testing.T, cat Category, entity, branch id.ID, when, qty, cost string) Flow {
	t.Helper()
	r, err := NewFlow(header(KindProduct, cat, entity, branch, when), q(qty), mp(cost), nil)
	require.NoError(t, err)
	return r
}

// flourHistory is a material group opened at 100, restocked by 50 and
// consumed by 30.
func flourHistory(t *testing.T, branch id.ID) []Record {
	return []Record{
		level(t, KindMaterial, CategoryOpening, flour, branch, "2024-01-01", "100", qp("100")),
		flow(t, KindMaterial, CategoryProcurementIn, flour, branch, "2024-01-03", "50", qp("150")),
		flow(t, KindMaterial, CategoryUsageOut, flour, branch, "2024-01-05", "30", qp("120")),
	}
}
