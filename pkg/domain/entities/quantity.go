package entities

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is an amount of stock in the line's unit of measure. Units such as
// kg or litres are fractional, so quantities are decimals rather than integers.
// The zero value is 0.
type Quantity decimal.Decimal

// ZeroQty is the zero quantity
var ZeroQty = Quantity(decimal.Zero)

// NewQuantity creates a Quantity from a whole number
func NewQuantity(value int64) Quantity {
	return Quantity(decimal.NewFromInt(value))
}

// NewQuantityFromFloat creates a Quantity from a float64
func NewQuantityFromFloat(value float64) Quantity {
	return Quantity(decimal.NewFromFloat(value))
}

// ParseQuantity parses a decimal string such as "12" or "2.5"
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroQty, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return Quantity(d), nil
}

// MustParseQuantity is ParseQuantity for literals; it panics on bad input
func MustParseQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

// Decimal returns the underlying decimal value
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.Decimal(q)
}

func (q Quantity) Add(o Quantity) Quantity { return Quantity(q.Decimal().Add(o.Decimal())) }
func (q Quantity) Sub(o Quantity) Quantity { return Quantity(q.Decimal().Sub(o.Decimal())) }
func (q Quantity) Cmp(o Quantity) int      { return q.Decimal().Cmp(o.Decimal()) }
func (q Quantity) Equal(o Quantity) bool   { return q.Decimal().Equal(o.Decimal()) }
func (q Quantity) LessThan(o Quantity) bool {
	return q.Decimal().LessThan(o.Decimal())
}
func (q Quantity) GreaterThan(o Quantity) bool {
	return q.Decimal().GreaterThan(o.Decimal())
}
func (q Quantity) IsZero() bool     { return q.Decimal().IsZero() }
func (q Quantity) IsPositive() bool { return q.Decimal().IsPositive() }
func (q Quantity) IsNegative() bool { return q.Decimal().IsNegative() }

// Min returns the smaller of q and o
func (q Quantity) Min(o Quantity) Quantity {
	if o.LessThan(q) {
		return o
	}
	return q
}

// Max returns the larger of q and o
func (q Quantity) Max(o Quantity) Quantity {
	if o.GreaterThan(q) {
		return o
	}
	return q
}

// Clamp bounds q to [lo, hi]. When hi < lo the result is lo.
func (q Quantity) Clamp(lo, hi Quantity) Quantity {
	return q.Min(hi).Max(lo)
}

// NonNegative returns q, or zero when q is negative
func (q Quantity) NonNegative() Quantity {
	return q.Max(ZeroQty)
}

// Float64 returns the nearest float64, for display and spreadsheet cells
func (q Quantity) Float64() float64 {
	f, _ := q.Decimal().Float64()
	return f
}

func (q Quantity) String() string {
	return q.Decimal().String()
}

// MarshalJSON writes the quantity as a JSON number
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*q = ZeroQty
		return nil
	}
	parsed, err := ParseQuantity(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// SumQuantities adds up a list of quantities
func SumQuantities(qs ...Quantity) Quantity {
	total := ZeroQty
	for _, q := range qs {
		total = total.Add(q)
	}
	return total
}
