package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLineItem(t *testing.T) {
	tests := []struct {
		name        string
		in          LineItemInput
		unitPrice   string
		amount      string
		profit      string
		marginPct   string
		checkMargin bool
	}{
		{
			name: "list 100 partner 60 qty 2 disc 10 mult 1",
			in: LineItemInput{
				ListPrice:       dec("100"),
				PartnerPrice:    dec("60"),
				Quantity:        2,
				DiscountPercent: dec("10"),
				Multiplier:      dec("1.0"),
			},
			unitPrice: "90",
			amount:    "180",
			profit:    "60",
		},
		{
			name: "multiplier raises unit price before discount",
			in: LineItemInput{
				ListPrice:       dec("100"),
				PartnerPrice:    dec("60"),
				Quantity:        1,
				DiscountPercent: dec("10"),
				Multiplier:      dec("1.5"),
			},
			unitPrice: "135",
			amount:    "135",
			profit:    "75",
		},
		{
			name: "full discount yields zero amount and zero margin",
			in: LineItemInput{
				ListPrice:       dec("100"),
				PartnerPrice:    dec("60"),
				Quantity:        3,
				DiscountPercent: dec("100"),
				Multiplier:      dec("1.0"),
			},
			unitPrice:   "0",
			amount:      "0",
			profit:      "-180",
			marginPct:   "0",
			checkMargin: true,
		},
		{
			name: "missing product prices as zero",
			in: LineItemInput{
				ListPrice:       decimal.Zero,
				PartnerPrice:    decimal.Zero,
				Quantity:        5,
				DiscountPercent: dec("25"),
				Multiplier:      dec("1.0"),
			},
			unitPrice:   "0",
			amount:      "0",
			profit:      "0",
			marginPct:   "0",
			checkMargin: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineItem(tt.in)
			assert.True(t, got.UnitPrice.Equal(dec(tt.unitPrice)), "unit price: got %s", got.UnitPrice)
			assert.True(t, got.Amount.Equal(dec(tt.amount)), "amount: got %s", got.Amount)
			assert.True(t, got.Profit.Equal(dec(tt.profit)), "profit: got %s", got.Profit)
			if tt.checkMargin {
				assert.True(t, got.MarginPercent.Equal(dec(tt.marginPct)), "margin: got %s", got.MarginPercent)
			}
		})
	}
}

func TestComputeLineItem_MarginScenarioA(t *testing.T) {
	got := ComputeLineItem(LineItemInput{
		ListPrice:       dec("100"),
		PartnerPrice:    dec("60"),
		Quantity:        2,
		DiscountPercent: dec("10"),
		Multiplier:      dec("1.0"),
	})

	// 60 / 180 * 100 ≈ 33.33%
	margin, _ := got.MarginPercent.Float64()
	assert.InDelta(t, 33.33, margin, 0.01)
}

func TestSubtotal(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.True(t, Subtotal([]decimal.Decimal{}).IsZero())

	got := Subtotal([]decimal.Decimal{dec("10.50"), dec("0"), dec("4.50")})
	assert.True(t, got.Equal(dec("15")))
}

func TestMarginPercent_ZeroRevenue(t *testing.T) {
	got := MarginPercent(dec("100"), decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestPercentOf(t *testing.T) {
	assert.True(t, PercentOf(dec("980"), dec("10")).Equal(dec("98")))
	assert.True(t, PercentOf(decimal.Zero, dec("10")).IsZero())
}

func TestTaxBase_ExcludesTaxes(t *testing.T) {
	// Scenario B: products 180, engineering 800, expenses 0
	base := TaxBase(dec("180"), dec("800"), decimal.Zero)
	assert.True(t, base.Equal(dec("980")))
	assert.True(t, PercentOf(base, dec("10")).Equal(dec("98")))
}

func TestComputeProposalTotals_ScenarioB(t *testing.T) {
	totals := ComputeProposalTotals(ProposalInput{
		LineItems: []LineAmounts{
			{Amount: dec("180"), ExtendedPartnerPrice: dec("120")},
		},
		Engineering: []decimal.Decimal{dec("800")},
		Taxes:       []decimal.Decimal{dec("98")},
	})

	assert.True(t, totals.SubtotalProducts.Equal(dec("180")))
	assert.True(t, totals.SubtotalEngineering.Equal(dec("800")))
	assert.True(t, totals.SubtotalExpenses.IsZero())
	assert.True(t, totals.SubtotalTaxes.Equal(dec("98")))
	assert.True(t, totals.TotalAmount.Equal(dec("1078")))

	// Engineering and taxes carry no cost basis.
	assert.True(t, totals.TotalCost.Equal(dec("120")))
	assert.True(t, totals.GrossProfit.Equal(dec("958")))
}

func TestComputeProposalTotals_ScenarioC(t *testing.T) {
	// Scenario B minus its only product line.
	totals := ComputeProposalTotals(ProposalInput{
		Engineering: []decimal.Decimal{dec("800")},
		Taxes:       []decimal.Decimal{dec("98")},
	})
	assert.True(t, totals.TotalAmount.Equal(dec("898")))

	// All categories emptied.
	empty := ComputeProposalTotals(ProposalInput{})
	assert.True(t, empty.TotalAmount.IsZero())
	assert.True(t, empty.TotalCost.IsZero())
	assert.True(t, empty.GrossProfit.IsZero())
	assert.True(t, empty.MarginPercent.IsZero())
}

func TestComputeProposalTotals_InvariantAcrossCategories(t *testing.T) {
	totals := ComputeProposalTotals(ProposalInput{
		LineItems: []LineAmounts{
			{Amount: dec("100"), ExtendedPartnerPrice: dec("40")},
			{Amount: dec("250.25"), ExtendedPartnerPrice: dec("100.10")},
		},
		Engineering: []decimal.Decimal{dec("1600"), dec("400")},
		Expenses:    []decimal.Decimal{dec("75.50")},
		Taxes:       []decimal.Decimal{dec("242.58")},
	})

	sum := totals.SubtotalProducts.
		Add(totals.SubtotalEngineering).
		Add(totals.SubtotalExpenses).
		Add(totals.SubtotalTaxes)
	assert.True(t, totals.TotalAmount.Equal(sum))

	// Cost = partner cost + expenses only.
	assert.True(t, totals.TotalCost.Equal(dec("215.60")))
	assert.True(t, totals.GrossProfit.Equal(totals.TotalAmount.Sub(totals.TotalCost)))
}

func TestEngineeringAmount(t *testing.T) {
	assert.True(t, EngineeringAmount(dec("1"), dec("800")).Equal(dec("800")))
	assert.True(t, EngineeringAmount(dec("2.5"), dec("1000")).Equal(dec("2500")))
	assert.True(t, EngineeringAmount(decimal.Zero, dec("800")).IsZero())
}

func TestApplyDiscount(t *testing.T) {
	assert.True(t, ApplyDiscount(dec("200"), dec("10")).Equal(dec("180")))
	assert.True(t, ApplyDiscount(dec("200"), decimal.Zero).Equal(dec("200")))
	assert.True(t, ApplyDiscount(dec("200"), dec("100")).IsZero())
}
