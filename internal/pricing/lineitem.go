package pricing

import "github.com/shopspring/decimal"

// LineItemInput carries the catalog values and per-line overrides for one
// product line. PartnerPrice is the effective cost basis: the per-line
// override when set, otherwise the catalog value, and zero when the
// referenced product no longer exists.
type LineItemInput struct {
	ListPrice       decimal.Decimal
	PartnerPrice    decimal.Decimal
	Quantity        int64
	DiscountPercent decimal.Decimal
	Multiplier      decimal.Decimal
}

// LineItemResult holds the derived monetary fields for one product line.
type LineItemResult struct {
	UnitPrice            decimal.Decimal
	ExtendedListPrice    decimal.Decimal
	ExtendedPartnerPrice decimal.Decimal
	Amount               decimal.Decimal
	Profit               decimal.Decimal
	MarginPercent        decimal.Decimal
}

// ComputeLineItem derives a product line's monetary fields.
//
// The unit price always includes the multiplier:
//
//	unitPrice = listPrice × multiplier × (1 − discount/100)
//
// and the extended customer price is unitPrice × quantity. The same formula
// is used everywhere a line amount is computed or re-derived.
func ComputeLineItem(in LineItemInput) LineItemResult {
	qty := decimal.NewFromInt(in.Quantity)

	unitPrice := ApplyDiscount(in.ListPrice.Mul(in.Multiplier), in.DiscountPercent)
	amount := unitPrice.Mul(qty)
	extendedPartner := in.PartnerPrice.Mul(qty)
	profit := amount.Sub(extendedPartner)

	return LineItemResult{
		UnitPrice:            unitPrice,
		ExtendedListPrice:    in.ListPrice.Mul(qty),
		ExtendedPartnerPrice: extendedPartner,
		Amount:               amount,
		Profit:               profit,
		MarginPercent:        MarginPercent(profit, amount),
	}
}

// EngineeringAmount derives a services entry amount from days and day rate.
func EngineeringAmount(days, dayRate decimal.Decimal) decimal.Decimal {
	return days.Mul(dayRate)
}
