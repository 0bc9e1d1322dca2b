// Package money holds monetary amounts as integer minor units (cents) so that
// totals never accumulate floating-point drift. Decimal text is only produced
// or parsed at the boundary.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in cents.
type Amount int64

const Zero Amount = 0

var ErrInvalidAmount = errors.New("invalid amount")

// Parse reads a decimal string such as "1299.99". Values with more than two
// fractional digits are rejected rather than rounded.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fromDecimal(d)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromFloat converts a float price, rounding half away from zero to cents.
func FromFloat(f float64) Amount {
	return Amount(decimal.NewFromFloat(f).Shift(2).Round(0).IntPart())
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has sub-cent precision", ErrInvalidAmount, d.String())
	}
	return Amount(cents.IntPart()), nil
}

// Mul multiplies the amount by a quantity.
func (a Amount) Mul(qty int64) Amount {
	return a * Amount(qty)
}

// Decimal returns the amount as a decimal in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Float64 is for views that need a JSON number.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// String formats with exactly two decimals, e.g. "2599.98" or "0.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
