package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	activityservice "github.com/dealdesk/dealdesk/internal/activity/service"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	catalogrepo "github.com/dealdesk/dealdesk/internal/catalog/repository"
	customerdomain "github.com/dealdesk/dealdesk/internal/customer/domain"
	"github.com/dealdesk/dealdesk/internal/migration"
	"github.com/dealdesk/dealdesk/internal/proposal/domain"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	svc := NewService(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Products: catalogrepo.Provide(),
		ActivitySvc: activityservice.NewService(activityservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
		}),
	})

	return svc, db, node
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node) int64 {
	t.Helper()
	cust := customerdomain.Customer{
		ID:        node.Generate().Int64(),
		Name:      "Acme Industrial",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&cust).Error)
	return cust.ID
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, code, list, partner string) int64 {
	t.Helper()
	p := catalogdomain.Product{
		ID:           node.Generate().Int64(),
		Code:         code,
		Name:         "Product " + code,
		ListPrice:    decimal.RequireFromString(list),
		PartnerPrice: decimal.RequireFromString(partner),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func reload(t *testing.T, svc domain.Service, id int64) *domain.Proposal {
	t.Helper()
	p, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestProposalAggregate(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	productID := seedProduct(t, db, node, "PLC-100", "100", "60")

	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)
	assert.Equal(t, "P-00001", p.Number)
	assert.Equal(t, domain.StatusDraft, p.Status)
	assert.Equal(t, "0", p.TotalAmount.String())

	t.Run("AddLineItem", func(t *testing.T) {
		item, err := svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{
			ProductID:       productID,
			Quantity:        2,
			DiscountPercent: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, "90", item.UnitPrice.String())
		assert.Equal(t, "180", item.Amount.String())

		got := reload(t, svc, p.ID)
		assert.Equal(t, "180", got.TotalAmount.String())
		assert.Equal(t, "120", got.TotalCost.String())
		assert.Equal(t, "60", got.GrossProfit.String())
	})

	t.Run("AddEngineeringAndExpense", func(t *testing.T) {
		_, err := svc.AddEngineeringEntry(ctx, p.ID, domain.EngineeringRequest{
			Description: "commissioning",
			Days:        decimal.RequireFromString("2"),
			DayRate:     decimal.RequireFromString("400"),
		})
		require.NoError(t, err)

		_, err = svc.AddExpense(ctx, p.ID, domain.ExpenseRequest{
			Description: "freight",
			Amount:      decimal.RequireFromString("20"),
		})
		require.NoError(t, err)

		got := reload(t, svc, p.ID)
		assert.Equal(t, "1000", got.TotalAmount.String())
		assert.Equal(t, "140", got.TotalCost.String())
		assert.Equal(t, "860", got.GrossProfit.String())
	})

	t.Run("AddTaxUsesPreTaxBase", func(t *testing.T) {
		tax, err := svc.AddTax(ctx, p.ID, domain.TaxRequest{
			Name:        "VAT",
			RatePercent: decimal.RequireFromString("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, "100", tax.Amount.String())

		got := reload(t, svc, p.ID)
		assert.Equal(t, "1100", got.TotalAmount.String())
		// Tax is pass-through, not cost.
		assert.Equal(t, "140", got.TotalCost.String())
		assert.Equal(t, "960", got.GrossProfit.String())
		margin, _ := got.MarginPercent.Float64()
		assert.InDelta(t, 87.27, margin, 0.01)
	})

	t.Run("RecomputeIsIdempotent", func(t *testing.T) {
		before := reload(t, svc, p.ID)

		totals, err := svc.Recompute(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, totals.TotalAmount.Equal(before.TotalAmount))

		totals2, err := svc.Recompute(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, totals2.TotalAmount.Equal(totals.TotalAmount))
		assert.True(t, totals2.GrossProfit.Equal(totals.GrossProfit))
	})

	t.Run("EditLineKeepsStoredTaxAmount", func(t *testing.T) {
		got := reload(t, svc, p.ID)
		require.Len(t, got.LineItems, 1)

		zero := decimal.Zero
		item, err := svc.UpdateLineItem(ctx, p.ID, got.LineItems[0].ID, domain.LineItemUpdate{
			DiscountPercent: &zero,
		})
		require.NoError(t, err)
		assert.Equal(t, "200", item.Amount.String())

		// The tax amount was derived when the tax was added and is not
		// re-derived by an unrelated line edit.
		got = reload(t, svc, p.ID)
		require.Len(t, got.Taxes, 1)
		assert.Equal(t, "100", got.Taxes[0].Amount.String())
		assert.Equal(t, "1120", got.TotalAmount.String())
	})

	t.Run("RemoveEntries", func(t *testing.T) {
		got := reload(t, svc, p.ID)
		require.NoError(t, svc.RemoveTax(ctx, p.ID, got.Taxes[0].ID))
		require.NoError(t, svc.RemoveExpense(ctx, p.ID, got.Expenses[0].ID))
		require.NoError(t, svc.RemoveEngineeringEntry(ctx, p.ID, got.Engineering[0].ID))
		require.NoError(t, svc.RemoveLineItem(ctx, p.ID, got.LineItems[0].ID))

		got = reload(t, svc, p.ID)
		assert.Equal(t, "0", got.TotalAmount.String())
		assert.Equal(t, "0", got.TotalCost.String())
		assert.Equal(t, "0", got.GrossProfit.String())
		assert.Equal(t, "0", got.MarginPercent.String())
	})
}

func TestProposalValidation(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	productID := seedProduct(t, db, node, "HMI-7", "250", "190")

	_, err := svc.Create(ctx, domain.CreateRequest{CustomerID: 12345})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	_, err = svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{ProductID: productID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{
		ProductID:       productID,
		Quantity:        1,
		DiscountPercent: decimal.RequireFromString("101"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.AddTax(ctx, p.ID, domain.TaxRequest{Name: "", RatePercent: decimal.RequireFromString("5")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.AddTax(ctx, p.ID, domain.TaxRequest{Name: "VAT", RatePercent: decimal.RequireFromString("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.AddEngineeringEntry(ctx, p.ID, domain.EngineeringRequest{
		Days:    decimal.RequireFromString("-1"),
		DayRate: decimal.RequireFromString("400"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDays)

	invalid := domain.ProposalStatus("approved")
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: p.ID, Status: &invalid})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.RemoveLineItem(ctx, p.ID, 404)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestCreateAfterDelete(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)

	first, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)
	assert.Equal(t, "P-00001", first.Number)

	second, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)
	assert.Equal(t, "P-00002", second.Number)

	// Numbering continues past the highest number ever assigned, so a
	// delete lower in the sequence never makes the next create collide
	// with a still-existing number.
	require.NoError(t, svc.Delete(ctx, first.ID))

	third, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)
	assert.Equal(t, "P-00003", third.Number)

	// Deleting the newest frees its number for reuse; that cannot collide.
	require.NoError(t, svc.Delete(ctx, third.ID))

	fourth, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)
	assert.Equal(t, "P-00003", fourth.Number)
}

func TestAddLineItemsBatch(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	plc := seedProduct(t, db, node, "PLC-200", "500", "350")
	hmi := seedProduct(t, db, node, "HMI-10", "250", "190")

	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	runsBefore := testutil.ToFloat64(recomputeRuns)
	items, err := svc.AddLineItems(ctx, p.ID, []domain.LineItemRequest{
		{ProductID: plc, Quantity: 1},
		{ProductID: hmi, Quantity: 2, DiscountPercent: decimal.RequireFromString("20")},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// One recompute for the whole batch, not one per row.
	assert.Equal(t, 1.0, testutil.ToFloat64(recomputeRuns)-runsBefore)
	assert.Equal(t, "500", items[0].Amount.String())
	assert.Equal(t, "400", items[1].Amount.String())

	got := reload(t, svc, p.ID)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "900", got.TotalAmount.String())
	assert.Equal(t, "730", got.TotalCost.String())

	// One invalid row fails the whole batch; nothing is written.
	_, err = svc.AddLineItems(ctx, p.ID, []domain.LineItemRequest{
		{ProductID: plc, Quantity: 1},
		{ProductID: 999, Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	got = reload(t, svc, p.ID)
	assert.Len(t, got.LineItems, 2)
	assert.Equal(t, "900", got.TotalAmount.String())
}

func TestDanglingProductPricesAsZero(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	productID := seedProduct(t, db, node, "DRV-5", "300", "210")

	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	item, err := svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "300", item.Amount.String())

	require.NoError(t, db.Delete(&catalogdomain.Product{}, "id = ?", productID).Error)

	// The stored line amount survives; only the catalog-resolved cost
	// basis drops to zero.
	totals, err := svc.Recompute(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", totals.TotalAmount.String())
	assert.Equal(t, "0", totals.TotalCost.String())
	assert.Equal(t, "300", totals.GrossProfit.String())

	// Editing the line re-derives against the missing product as zero.
	qty := int64(2)
	item, err = svc.UpdateLineItem(ctx, p.ID, item.ID, domain.LineItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "0", item.UnitPrice.String())
	assert.Equal(t, "0", item.Amount.String())
}

func TestConcurrentMutationsSerialize(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddExpense(ctx, p.ID, domain.ExpenseRequest{
				Description: "site visit",
				Amount:      decimal.RequireFromString("10"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got := reload(t, svc, p.ID)
	require.Len(t, got.Expenses, workers)
	assert.Equal(t, "80", got.TotalAmount.String())
	assert.Equal(t, "80", got.TotalCost.String())
	assert.Equal(t, "0", got.GrossProfit.String())
}

func TestUpdateConcurrentWithChildMutations(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	// Scalar updates race against expense mutations that recompute the
	// aggregate. Update must not write back the totals it loaded, or a
	// slow Update would overwrite a fresher recompute.
	const rounds = 20
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			note := fmt.Sprintf("revision %d", i)
			_, err := svc.Update(ctx, domain.UpdateRequest{ID: p.ID, Notes: &note})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := svc.AddExpense(ctx, p.ID, domain.ExpenseRequest{
				Description: "travel",
				Amount:      decimal.RequireFromString("10"),
			})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	got := reload(t, svc, p.ID)
	require.Len(t, got.Expenses, rounds)
	assert.Equal(t, "200", got.TotalAmount.String())
	assert.Equal(t, "200", got.TotalCost.String())
	assert.Equal(t, "revision 19", got.Notes)
}

func TestDeleteRemovesChildren(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	custID := seedCustomer(t, db, node)
	productID := seedProduct(t, db, node, "SEN-1", "50", "30")

	p, err := svc.Create(ctx, domain.CreateRequest{CustomerID: custID})
	require.NoError(t, err)

	_, err = svc.AddLineItem(ctx, p.ID, domain.LineItemRequest{ProductID: productID, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddTax(ctx, p.ID, domain.TaxRequest{Name: "VAT", RatePercent: decimal.RequireFromString("20")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var lines int64
	require.NoError(t, db.Model(&domain.LineItem{}).Where("proposal_id = ?", p.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	var taxes int64
	require.NoError(t, db.Model(&domain.CustomTax{}).Where("proposal_id = ?", p.ID).Count(&taxes).Error)
	assert.Zero(t, taxes)
}
