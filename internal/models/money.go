package models

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places amounts are rounded to.
const CurrencyPlaces = 2

// Money is a decimal amount that is always rendered in JSON with
// CurrencyPlaces digits, e.g. "165000.00". Database scanning and valuing come
// from the embedded decimal.Decimal.
type Money struct {
	decimal.Decimal
}

// NewMoney returns a whole-unit amount.
func NewMoney(value int64) Money {
	return Money{Decimal: decimal.NewFromInt(value)}
}

// MustParseMoney parses s and panics if it is not a decimal number.
func MustParseMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

// MarshalJSON renders the amount as a fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(CurrencyPlaces) + `"`), nil
}

// Equal reports whether both amounts have the same value regardless of scale.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// LineSubtotal returns price × quantity rounded half away from zero.
func LineSubtotal(price Money, quantity int) Money {
	return Money{Decimal: price.Mul(decimal.NewFromInt(int64(quantity))).Round(CurrencyPlaces)}
}

// CartTotal sums quantity × price over items and rounds the sum once.
func CartTotal(items []CartItem) Money {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return Money{Decimal: total.Round(CurrencyPlaces)}
}
