// Package money provides a fixed-precision decimal scalar for portfolio
// values, trade sizes and costs. All boundary arithmetic (balances, trade
// values, transaction costs) goes through Value; numeric inner loops
// (simulation, optimization) convert to float64 and back at the edges.
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrPrecisionOverflow is returned when a Value's magnitude would exceed the
// range this package guarantees exact arithmetic for.
var ErrPrecisionOverflow = errors.New("money: precision overflow")

// maxMagnitude is the largest absolute value a Value may hold, per the
// 10^18 bound.
var maxMagnitude = decimal.New(1, 18)

// DefaultScale is the number of fractional digits money.Value quantizes to
// when constructed from a float64, absent a more specific currency scale.
const DefaultScale = 2

// Value is a signed decimal with at least 28 significant digits of
// precision (inherited from decimal.Decimal's arbitrary-precision big.Int
// backing) and banker's rounding applied only at the output boundary.
type Value struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Value{d: decimal.Zero}

// New wraps a decimal.Decimal directly, checking the overflow bound.
func New(d decimal.Decimal) (Value, error) {
	if d.Abs().Cmp(maxMagnitude) >= 0 {
		return Value{}, ErrPrecisionOverflow
	}
	return Value{d: d}, nil
}

// FromFloat64 quantizes f to scale fractional digits using banker's
// rounding, per MoneyValue's output-boundary rounding rule.
func FromFloat64(f float64, scale int32) (Value, error) {
	d := decimal.NewFromFloat(f).RoundBank(scale)
	return New(d)
}

// FromString parses an exact decimal literal, e.g. from a config file or a
// serialized RebalanceResult.
func FromString(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("money: %w", err)
	}
	return New(d)
}

// MustFromString panics on a malformed literal; for use with compile-time
// constants in tests and fixtures.
func MustFromString(s string) Value {
	v, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 converts to a 64-bit float for use inside the simulator and
// optimizer. Precision beyond float64's ~15-17 significant digits is lost;
// callers must convert back to Value only at trade emission.
func (v Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// Decimal exposes the underlying decimal.Decimal for callers that need the
// full shopspring/decimal API (e.g. persistence via pgx-shopspring-decimal).
func (v Value) Decimal() decimal.Decimal { return v.d }

func (v Value) Add(o Value) Value { return Value{d: v.d.Add(o.d)} }
func (v Value) Sub(o Value) Value { return Value{d: v.d.Sub(o.d)} }
func (v Value) Neg() Value        { return Value{d: v.d.Neg()} }
func (v Value) Abs() Value        { return Value{d: v.d.Abs()} }

// Mul multiplies by a dimensionless decimal factor (e.g. shares × price
// where price is itself a Value requires MulValue below; Mul is for
// unitless scalars like transaction_cost_bps).
func (v Value) Mul(factor decimal.Decimal) Value { return Value{d: v.d.Mul(factor)} }

// MulValue multiplies two Values together (e.g. shares × price). The result
// is not overflow-checked: callers must re-wrap via New if they need the
// guarantee enforced.
func (v Value) MulValue(o Value) Value { return Value{d: v.d.Mul(o.d)} }

// Div divides by a dimensionless decimal divisor.
func (v Value) Div(divisor decimal.Decimal) Value { return Value{d: v.d.Div(divisor)} }

// DivValue divides by another Value, e.g. value / price = shares.
func (v Value) DivValue(o Value) Value { return Value{d: v.d.Div(o.d)} }

func (v Value) IsZero() bool     { return v.d.IsZero() }
func (v Value) IsNegative() bool { return v.d.IsNegative() }
func (v Value) IsPositive() bool { return v.d.IsPositive() }

func (v Value) Cmp(o Value) int           { return v.d.Cmp(o.d) }
func (v Value) Equal(o Value) bool        { return v.d.Equal(o.d) }
func (v Value) GreaterThan(o Value) bool  { return v.d.GreaterThan(o.d) }
func (v Value) LessThan(o Value) bool     { return v.d.LessThan(o.d) }
func (v Value) GreaterOrEqual(o Value) bool { return v.d.GreaterThanOrEqual(o.d) }
func (v Value) LessOrEqual(o Value) bool  { return v.d.LessThanOrEqual(o.d) }

// RoundBank rounds to the given number of fractional digits using
// round-half-to-even, the only rounding mode this package uses and only at
// output boundaries.
func (v Value) RoundBank(scale int32) Value { return Value{d: v.d.RoundBank(scale)} }

// String renders with two fractional digits, the default currency
// precision used throughout serialized RebalanceResult output.
func (v Value) String() string { return v.d.RoundBank(DefaultScale).StringFixedBank(DefaultScale) }

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.d.RoundBank(DefaultScale).StringFixedBank(DefaultScale))
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	parsed, err := New(d)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Sum adds a slice of Values, returning Zero for an empty slice.
func Sum(vs ...Value) Value {
	total := Zero
	for _, v := range vs {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of two Values.
func Max(a, b Value) Value {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of two Values.
func Min(a, b Value) Value {
	if a.LessThan(b) {
		return a
	}
	return b
}
