// Package pricing implements the proposal pricing and aggregation engine.
//
// Every function here is pure: inputs come from entity fields, outputs are
// derived monetary figures. Persistence and recompute triggering live in the
// proposal service.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyDiscount reduces amount by a percentage in the 0-100 range.
func ApplyDiscount(amount, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return amount.Mul(factor)
}

// PercentOf returns ratePercent percent of base. Used for tax amounts.
func PercentOf(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Mul(ratePercent).Div(hundred)
}

// MarginPercent returns profit as a percentage of revenue.
// A zero revenue yields zero rather than a division error; an empty
// proposal has no meaningful margin.
func MarginPercent(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred)
}

// Subtotal sums the amounts of one proposal category. Empty input sums to zero.
func Subtotal(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
