// Package pricing derives the money figures of a cart or order.
//
// Calculate is the only place subtotal, tax and shipping are computed. The
// cart summary shown to the customer and the order written at checkout both
// call it, so what is displayed is what is stored.
package pricing

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.RequireFromString("50.00")
	FlatShippingFee       = decimal.RequireFromString("5.99")
)

const moneyPlaces = 2

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func Calculate(lines []Line) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	subtotal = subtotal.Round(moneyPlaces)

	tax := subtotal.Mul(TaxRate).Round(moneyPlaces)

	shipping := FlatShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) || len(lines) == 0 {
		shipping = decimal.Zero
	}

	s := Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: decimal.Zero,
	}
	s.Total = s.total()
	return s
}

// WithDiscount applies a discount after tax and shipping. The discount is
// clamped to [0, subtotal].
func (s Summary) WithDiscount(discount decimal.Decimal) Summary {
	discount = discount.Round(moneyPlaces)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(s.Subtotal) {
		discount = s.Subtotal
	}
	s.Discount = discount
	s.Total = s.total()
	return s
}

// Balanced reports whether total == subtotal + tax + shipping - discount.
func (s Summary) Balanced() bool {
	return s.Total.Equal(s.total())
}

func (s Summary) total() decimal.Decimal {
	return s.Subtotal.Add(s.Tax).Add(s.Shipping).Sub(s.Discount)
}

// PercentOf returns round(amount * percent / 100, 2).
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(moneyPlaces)
}
