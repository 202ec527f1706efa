// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing and display go through
// shopspring/decimal so no float arithmetic touches stored values.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// MaxAmount is the largest amount accepted from input or storage, in euros.
var MaxAmount = decimal.New(1, 13)

const (
	maxAmountLen = 64
	minExponent  = -32
	maxExponent  = 13
)

// ParseAmount converts user input to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero to whole cents. Zero, negative and non-numeric inputs
// are rejected with a ValidationError.
//
// Examples:
//   ParseAmount("12.34")  -> 1234 cents
//   ParseAmount("12,345") -> 1235 cents
//   ParseAmount("0")      -> error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen {
		return Money{}, invalidAmount(s)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, invalidAmount(s)
	}
	m, err := FromDecimal(d)
	if err != nil {
		return Money{}, invalidAmount(s)
	}
	if err := m.Validate(); err != nil {
		return Money{}, invalidAmount(s)
	}
	return m, nil
}

func invalidAmount(s string) error {
	return &ValidationError{Field: "amount", Message: fmt.Sprintf("introduce un importe válido mayor que 0 (got %q)", s), Err: ErrInvalidAmount}
}

// FromDecimal rounds d to cents. Values above MaxAmount in magnitude are
// rejected before rounding, so the result always fits in int64 cents.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if e := d.Exponent(); e < minExponent || e > maxExponent {
		return Money{}, ErrAmountOutOfRange
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// Euros returns the amount as a decimal number of euros.
func (m Money) Euros() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return &ValidationError{Field: "amount", Message: "amount must be greater than zero", Err: ErrInvalidAmount}
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// String formats the amount with two decimals, e.g. "650.00".
func (m Money) String() string {
	return m.Euros().StringFixed(2)
}

// MarshalJSON writes the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts JSON numbers and numeric strings. null and "" decode
// to zero; anything else that is not a number in range is an error.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*m = Money{}
		return nil
	}
	if len(s) > maxAmountLen+2 {
		return fmt.Errorf("decode amount: %w", ErrAmountOutOfRange)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode amount %s: %w", s, ErrInvalidAmount)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return fmt.Errorf("decode amount %s: %w", s, err)
	}
	*m = v
	return nil
}
