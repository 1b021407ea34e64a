package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact monetary value: an integer amount of minor units
// (cents, pence, yen) paired with an ISO 4217 currency code. Arithmetic
// never touches floating point.
type Money struct {
	Amount   int64
	Currency string
}

// minorUnitDigits maps currencies to their minor-unit exponent.
// Currencies absent from the map use the ISO default of 2.
var minorUnitDigits = map[string]int32{
	"JPY": 0, "KRW": 0, "VND": 0,
	"BHD": 3, "KWD": 3, "OMR": 3,
}

// MinorUnitDigits returns the number of minor-unit digits for a currency.
func MinorUnitDigits(currency string) int32 {
	if d, ok := minorUnitDigits[strings.ToUpper(currency)]; ok {
		return d
	}
	return 2
}

// NewMoney creates a Money from an exact minor-unit amount.
func NewMoney(minorUnits int64, currency string) Money {
	return Money{Amount: minorUnits, Currency: strings.ToUpper(currency)}
}

// ParseMoney parses a major-unit decimal string ("1234.56") into an exact
// minor-unit Money. Input with more fractional digits than the currency
// carries is rejected rather than silently rounded.
func ParseMoney(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}

	digits := MinorUnitDigits(currency)

	minor := d.Shift(digits)
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, value, digits)
	}

	if !minor.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: %q overflows minor units", ErrInvalidAmount, value)
	}

	return NewMoney(minor.IntPart(), currency), nil
}

// Add returns m + other. Fails if the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m - other. Fails if the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Cmp compares m against other: -1 if m < other, 0 if equal, 1 if m > other.
// Fails if the currencies differ.
func (m Money) Cmp(other Money) (int, error) {
	if m.Currency != other.Currency {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}

	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// MulScalar multiplies by a decimal scalar and rounds the result to whole
// minor units. Rounding rule: half away from zero (0.5 minor units rounds
// up for positive amounts, down for negative).
func (m Money) MulScalar(scalar decimal.Decimal) Money {
	product := decimal.NewFromInt(m.Amount).Mul(scalar).Round(0)
	return Money{Amount: product.IntPart(), Currency: m.Currency}
}

// DivScalar divides by a decimal scalar and rounds the result to whole
// minor units, half away from zero. Division by zero panics, matching the
// underlying decimal library.
func (m Money) DivScalar(scalar decimal.Decimal) Money {
	quotient := decimal.NewFromInt(m.Amount).DivRound(scalar, 0)
	return Money{Amount: quotient.IntPart(), Currency: m.Currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// Neg returns the value with the sign flipped.
func (m Money) Neg() Money { return Money{Amount: -m.Amount, Currency: m.Currency} }

// MajorUnits returns the amount as a decimal in major units.
func (m Money) MajorUnits() decimal.Decimal {
	return decimal.NewFromInt(m.Amount).Shift(-MinorUnitDigits(m.Currency))
}

// String renders a display value like "USD 1234.56". Display only; never
// used for arithmetic or comparison.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.MajorUnits().StringFixed(MinorUnitDigits(m.Currency)))
}
