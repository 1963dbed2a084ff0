package types

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{"12", 120_000},
		{"12.5", 125_000},
		{"-0.25", -2_500},
		{"+3.12345", 31_234},
		{".5", 5_000},
		{"1e2", 1_000_000},
	}
	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseQuantity("abc")
	assert.Error(t, err)
	_, err = ParseQuantity("")
	assert.Error(t, err)
}

func TestQuantity_StringAndJSON(t *testing.T) {
	q := MustQuantity("-120.5")
	assert.Equal(t, "-120.5000", q.String())

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "-120.5000", string(raw))

	var back Quantity
	require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &back))
	assert.Equal(t, MustQuantity("7.25"), back)
	require.NoError(t, json.Unmarshal([]byte(`null`), &back))
	assert.True(t, back.IsZero())
}

func TestQuantity_Value(t *testing.T) {
	q := MustQuantity("2.5")
	assert.True(t, q.Value(MustMoney("400")).Equal(MustMoney("1000")))
	assert.True(t, q.Decimal().Equal(decimal.RequireFromString("2.5")))
}

func TestSafeQuantity(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   Quantity
		wantOK bool
	}{
		{"nil", nil, 0, true},
		{"float", 10.5, MustQuantity("10.5"), true},
		{"int32", int32(4), MustQuantity("4"), true},
		{"string", " 3.25 ", MustQuantity("3.25"), true},
		{"garbage string", "twelve", 0, false},
		{"empty string", "", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"bool", true, 0, false},
		{"numeric", pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, MustQuantity("12.34"), true},
		{"numeric null", pgtype.Numeric{}, 0, true},
		{"numeric nan", pgtype.Numeric{NaN: true, Valid: true}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SafeQuantity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestOptionalQuantity(t *testing.T) {
	assert.Nil(t, OptionalQuantity(nil))
	assert.Nil(t, OptionalQuantity("n/a"))
	assert.Nil(t, OptionalQuantity(pgtype.Numeric{}))
	got := OptionalQuantity(int64(9))
	require.NotNil(t, got)
	assert.Equal(t, MustQuantity("9"), *got)
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(MustMoney("30"), MustMoney("40")).Equal(MustMoney("75")))
	assert.True(t, Percent(MustMoney("30"), Zero()).IsZero())
	assert.True(t, Percent(MustMoney("30"), MustMoney("-1")).IsZero())
}
