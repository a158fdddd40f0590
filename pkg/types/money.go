package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. It serializes as a bare JSON number so
// that a value such as 12.50 reaches the server without binary rounding.
type Money struct {
	decimal.Decimal
}

// NewMoney parses a decimal string such as "129.90".
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is like NewMoney but panics on malformed input. Intended for
// literals in tests and seed data.
func MustMoney(s string) *Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return &m
}

// MarshalJSON encodes m as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}
