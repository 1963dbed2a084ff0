package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SafeDecimal coerces a loosely typed column value into a decimal.
//
// nil yields zero with ok=true (absent value). Anything that is not a finite
// number yields zero with ok=false so callers can count malformed rows.
// It never panics and never produces NaN.
func SafeDecimal(v any) (d decimal.Decimal, ok bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, true
		}
		return *x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case *float64:
		if x == nil {
			return decimal.Zero, true
		}
		return SafeDecimal(*x)
	case float32:
		return SafeDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		return SafeDecimal(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return SafeDecimal(f)
			}
			return decimal.Zero, false
		}
		return parsed, true
	case []byte:
		return SafeDecimal(string(x))
	case pgtype.Numeric:
		if !x.Valid {
			return decimal.Zero, true
		}
		if x.NaN || x.InfinityModifier != pgtype.Finite || x.Int == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromBigInt(x.Int, x.Exp), true
	case pgtype.Float8:
		if !x.Valid {
			return decimal.Zero, true
		}
		return SafeDecimal(x.Float64)
	case pgtype.Int8:
		if !x.Valid {
			return decimal.Zero, true
		}
		return decimal.NewFromInt(x.Int64), true
	default:
		return decimal.Zero, false
	}
}

// SafeQuantity coerces v into a Quantity; see SafeDecimal.
func SafeQuantity(v any) (Quantity, bool) {
	d, ok := SafeDecimal(v)
	return NewQuantityFromDecimal(d), ok
}

// SafeMoney coerces v into Money; see SafeDecimal.
func SafeMoney(v any) (Money, bool) {
	return SafeDecimal(v)
}

// OptionalQuantity coerces v, returning nil for absent or malformed values.
func OptionalQuantity(v any) *Quantity {
	if v == nil {
		return nil
	}
	if n, isNumeric := v.(pgtype.Numeric); isNumeric && !n.Valid {
		return nil
	}
	q, ok := SafeQuantity(v)
	if !ok {
		return nil
	}
	return &q
}
