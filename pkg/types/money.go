package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money renders integer cents as a two-decimal amount in API payloads.
// Arithmetic stays on cents; decimal is presentation only.
type Money struct {
	cents int64
}

// MoneyFromCents wraps a cent amount.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// Cents returns the raw cent amount.
func (m Money) Cents() int64 {
	return m.cents
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// MarshalJSON emits the amount as a plain JSON number, e.g. 12.50.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON parses a JSON number back into cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	amount, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("parsing money: %w", err)
	}
	m.cents = amount.Shift(2).IntPart()
	return nil
}
