package models

import "github.com/shopspring/decimal"

// Money is a decimal-backed amount used for every price/total field in the
// data model, so that the exact-arithmetic invariants in spec.md §3/§8
// (cart total == sum(unit_price*qty), order total == subtotal+tax+shipping-
// discount floored at 0) hold without floating-point drift.
type Money struct {
	decimal.Decimal
}

// ZeroMoney returns the additive identity.
func ZeroMoney() Money {
	return Money{decimal.Zero}
}

// NewMoney builds a Money from a float64 (convenience for literals/tests;
// external input should use NewMoneyFromString).
func NewMoney(v float64) Money {
	return Money{decimal.NewFromFloat(v)}
}

// NewMoneyFromString parses a decimal string, used when deserializing
// untrusted external input (scripts, LLM output).
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

func (m Money) MulInt(n int) Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(int64(n)))}
}

// MulPercent returns m reduced by pct percent (e.g. MulPercent(15) applies a
// 15% discount).
func (m Money) MulPercent(pct decimal.Decimal) Money {
	factor := decimal.NewFromInt(100).Sub(pct).Div(decimal.NewFromInt(100))
	return Money{m.Decimal.Mul(factor)}
}

// FloorZero clamps a negative amount to zero (used for order totals).
func (m Money) FloorZero() Money {
	if m.Decimal.IsNegative() {
		return ZeroMoney()
	}
	return m
}

func (m Money) GreaterThan(other Money) bool { return m.Decimal.GreaterThan(other.Decimal) }
func (m Money) LessThan(other Money) bool    { return m.Decimal.LessThan(other.Decimal) }
func (m Money) Equal(other Money) bool       { return m.Decimal.Equal(other.Decimal) }
func (m Money) IsZero() bool                 { return m.Decimal.IsZero() }
