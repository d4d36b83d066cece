package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.StringFixed(2))
}

func TestCalculateBelowFreeShipping(t *testing.T) {
	s := Calculate([]Line{
		{UnitPrice: dec("10.00"), Quantity: 2},
		{UnitPrice: dec("5.00"), Quantity: 1},
	})

	assertMoney(t, "25.00", s.Subtotal)
	assertMoney(t, "2.00", s.Tax)
	assertMoney(t, "5.99", s.Shipping)
	assertMoney(t, "0", s.Discount)
	assertMoney(t, "32.99", s.Total)
	assert.True(t, s.Balanced())
}

func TestCalculateAtFreeShippingThreshold(t *testing.T) {
	s := Calculate([]Line{{UnitPrice: dec("25.00"), Quantity: 2}})

	assertMoney(t, "50.00", s.Subtotal)
	assertMoney(t, "4.00", s.Tax)
	assertMoney(t, "0", s.Shipping)
	assertMoney(t, "54.00", s.Total)
}

func TestCalculateJustBelowThreshold(t *testing.T) {
	s := Calculate([]Line{{UnitPrice: dec("49.99"), Quantity: 1}})

	assertMoney(t, "5.99", s.Shipping)
	assertMoney(t, "4.00", s.Tax) // 3.9992
	assertMoney(t, "59.98", s.Total)
}

func TestCalculateAvoidsBinaryFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style sums must land exactly on the cent.
	lines := make([]Line, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, Line{UnitPrice: dec("0.10"), Quantity: 3})
	}
	s := Calculate(lines)

	assertMoney(t, "3.00", s.Subtotal)
	assertMoney(t, "0.24", s.Tax)
	assertMoney(t, "9.23", s.Total)
}

func TestCalculateTaxRoundsToCent(t *testing.T) {
	s := Calculate([]Line{{UnitPrice: dec("10.56"), Quantity: 1}})
	assertMoney(t, "0.84", s.Tax) // 0.8448

	s = Calculate([]Line{{UnitPrice: dec("10.57"), Quantity: 1}})
	assertMoney(t, "0.85", s.Tax) // 0.8456
	assertMoney(t, "17.41", s.Total)
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	assertMoney(t, "0", s.Subtotal)
	assertMoney(t, "0", s.Shipping)
	assertMoney(t, "0", s.Total)
}

func TestWithDiscount(t *testing.T) {
	base := Calculate([]Line{{UnitPrice: dec("20.00"), Quantity: 3}})
	require.True(t, base.Balanced())

	s := base.WithDiscount(dec("6.00"))
	assertMoney(t, "60.00", s.Subtotal)
	assertMoney(t, "4.80", s.Tax)
	assertMoney(t, "0", s.Shipping)
	assertMoney(t, "6.00", s.Discount)
	assertMoney(t, "58.80", s.Total)
	assert.True(t, s.Balanced())

	clamped := base.WithDiscount(dec("100"))
	assertMoney(t, "60.00", clamped.Discount)
	assertMoney(t, "4.80", clamped.Total)

	negative := base.WithDiscount(dec("-5"))
	assertMoney(t, "0", negative.Discount)
	assertMoney(t, base.Total.String(), negative.Total)
}

func TestCalculateIsDeterministic(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("19.99"), Quantity: 3},
		{UnitPrice: dec("0.01"), Quantity: 7},
		{UnitPrice: dec("4.35"), Quantity: 2},
	}
	a := Calculate(lines)
	b := Calculate(append([]Line(nil), lines...))

	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.Tax.Equal(b.Tax))
	assert.True(t, a.Shipping.Equal(b.Shipping))
	assert.True(t, a.Total.Equal(b.Total))
}

func TestPercentOf(t *testing.T) {
	assertMoney(t, "2.50", PercentOf(dec("25.00"), dec("10")))
	assertMoney(t, "3.33", PercentOf(dec("33.30"), dec("10")))
}
