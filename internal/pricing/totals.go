package pricing

import "github.com/shopspring/decimal"

// LineAmounts is the per-line contribution to proposal totals: the customer
// amount and the cost basis.
type LineAmounts struct {
	Amount               decimal.Decimal
	ExtendedPartnerPrice decimal.Decimal
}

// ProposalInput collects the four category collections of one proposal.
type ProposalInput struct {
	LineItems   []LineAmounts
	Engineering []decimal.Decimal
	Expenses    []decimal.Decimal
	Taxes       []decimal.Decimal
}

// ProposalTotals are the whole-proposal financial figures.
type ProposalTotals struct {
	SubtotalProducts    decimal.Decimal
	SubtotalEngineering decimal.Decimal
	SubtotalExpenses    decimal.Decimal
	SubtotalTaxes       decimal.Decimal
	TotalAmount         decimal.Decimal
	TotalCost           decimal.Decimal
	GrossProfit         decimal.Decimal
	MarginPercent       decimal.Decimal
}

// ComputeProposalTotals combines the four category subtotals into the
// proposal total, cost, gross profit and margin.
//
// Cost basis is partner cost of product lines plus expenses. Engineering
// and taxes are pass-through: they raise the total but carry no cost.
func ComputeProposalTotals(in ProposalInput) ProposalTotals {
	products := decimal.Zero
	cost := decimal.Zero
	for _, line := range in.LineItems {
		products = products.Add(line.Amount)
		cost = cost.Add(line.ExtendedPartnerPrice)
	}

	engineering := Subtotal(in.Engineering)
	expenses := Subtotal(in.Expenses)
	taxes := Subtotal(in.Taxes)

	totalAmount := products.Add(engineering).Add(expenses).Add(taxes)
	totalCost := cost.Add(expenses)
	grossProfit := totalAmount.Sub(totalCost)

	return ProposalTotals{
		SubtotalProducts:    products,
		SubtotalEngineering: engineering,
		SubtotalExpenses:    expenses,
		SubtotalTaxes:       taxes,
		TotalAmount:         totalAmount,
		TotalCost:           totalCost,
		GrossProfit:         grossProfit,
		MarginPercent:       MarginPercent(grossProfit, totalAmount),
	}
}

// TaxBase is the pre-tax subtotal a custom tax rate applies against.
// Existing taxes are excluded so taxes never tax themselves; a tax amount
// must be derived before the tax joins the proposal's tax collection.
func TaxBase(products, engineering, expenses decimal.Decimal) decimal.Decimal {
	return products.Add(engineering).Add(expenses)
}
