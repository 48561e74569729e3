package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits kept for every monetary amount
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// Money is a fixed-point amount in the marketplace currency.
// It is immutable and always carries exactly Scale fraction digits;
// construction rounds half away from zero, which is half-up for the
// non-negative amounts the ledger stores.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal, rounding to Scale
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(Scale)}
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return NewMoney(decimal.NewFromInt(amount))
}

// NewMoneyFromString parses a decimal string
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// MustMoney parses a decimal string and panics on malformed input.
// Intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// MultiplyByInt returns m * factor
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor))}
}

// Negate returns -m
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg()}
}

// Percentage returns round(m * rate / 100, Scale)
func (m Money) Percentage(rate decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(rate).Div(hundred))
}

// Cmp compares m and other
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan returns true if m < other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan returns true if m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// String returns the amount with exactly Scale fraction digits
func (m Money) String() string {
	return m.amount.StringFixed(Scale)
}

// MarshalJSON encodes the amount as a fixed-point string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a JSON string or number
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	parsed, err := NewMoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	*m = NewMoney(d)
	return nil
}

// Sum adds up the given amounts
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// AllocateByWeights splits m across weights pro rata, rounding each share to
// Scale. The rounding remainder goes to the share with the largest weight
// (first one on ties) so the shares always sum to m.
func (m Money) AllocateByWeights(weights []Money) ([]Money, error) {
	if len(weights) == 0 {
		return nil, errors.New("weights must not be empty")
	}

	totalWeight := decimal.Zero
	largest := 0
	for i, w := range weights {
		if w.IsNegative() {
			return nil, errors.New("weights must not be negative")
		}
		totalWeight = totalWeight.Add(w.amount)
		if w.amount.GreaterThan(weights[largest].amount) {
			largest = i
		}
	}

	shares := make([]Money, len(weights))
	if totalWeight.IsZero() {
		for i := range shares {
			shares[i] = Zero()
		}
		shares[largest] = m
		return shares, nil
	}

	allocated := Zero()
	for i, w := range weights {
		shares[i] = NewMoney(m.amount.Mul(w.amount).Div(totalWeight))
		allocated = allocated.Add(shares[i])
	}
	shares[largest] = shares[largest].Add(m.Sub(allocated))

	return shares, nil
}
