package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeSubtotal sums UnitPrice × Quantity across lines.
func ComputeSubtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Promo is the single accepted discount code and its rate.
type Promo struct {
	Code string
	Rate decimal.Decimal
}

// DefaultPromo accepts HUNTER10 for 10% off.
func DefaultPromo() Promo {
	return Promo{Code: "HUNTER10", Rate: decimal.NewFromFloat(0.10)}
}

// Accepts compares code against the accepted code, ignoring case and
// surrounding whitespace.
func (p Promo) Accepts(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && strings.EqualFold(code, p.Code)
}

// Discount returns the reduction for subtotal when applied is true.
func (p Promo) Discount(subtotal decimal.Decimal, applied bool) decimal.Decimal {
	if !applied || !subtotal.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Mul(p.Rate)
}

// ComputeTotal returns subtotal minus the discount, never below zero.
func (p Promo) ComputeTotal(subtotal decimal.Decimal, applied bool) decimal.Decimal {
	total := subtotal.Sub(p.Discount(subtotal, applied))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// RoundCurrency rounds an amount to two decimal places for presentation.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
