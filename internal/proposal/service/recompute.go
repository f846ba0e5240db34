package service

import (
	"context"
	"time"

	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/pricing"
	"github.com/dealdesk/dealdesk/internal/proposal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recompute re-derives the proposal aggregate from the current child
// collections and persists it. It is the same code path every mutation runs
// inside its transaction, so calling it again with no intervening mutation
// is a no-op on the stored figures.
func (s *Service) Recompute(ctx context.Context, proposalID int64) (pricing.ProposalTotals, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return pricing.ProposalTotals{}, err
	}

	var totals pricing.ProposalTotals
	err = s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.recomputeTx(ctx, tx, p)
		totals = t
		return err
	})
	if err != nil {
		return pricing.ProposalTotals{}, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionRecomputed, "proposal", proposalID, p.Number, nil)
	return totals, nil
}

// recomputeTx derives the aggregate figures inside the mutation transaction
// and writes them to the proposal row. When the transaction aborts, the
// stale totals are rolled back with it, so a persisted proposal never
// carries totals that disagree with its children.
//
// Stored child amounts are authoritative here: line and tax amounts are
// re-derived at their own mutation time, not on every aggregate pass. The
// cost basis is resolved against the current catalog, treating a deleted
// product as zero partner cost.
func (s *Service) recomputeTx(ctx context.Context, tx *gorm.DB, p *domain.Proposal) (pricing.ProposalTotals, error) {
	recomputeRuns.Inc()

	lines, err := s.lines.WithTrx(tx).Find(ctx, &domain.LineItem{ProposalID: p.ID})
	if err != nil {
		return pricing.ProposalTotals{}, err
	}
	engineering, err := s.engineering.WithTrx(tx).Find(ctx, &domain.EngineeringEntry{ProposalID: p.ID})
	if err != nil {
		return pricing.ProposalTotals{}, err
	}
	expenses, err := s.expenses.WithTrx(tx).Find(ctx, &domain.ExpenseEntry{ProposalID: p.ID})
	if err != nil {
		return pricing.ProposalTotals{}, err
	}
	taxes, err := s.taxes.WithTrx(tx).Find(ctx, &domain.CustomTax{ProposalID: p.ID})
	if err != nil {
		return pricing.ProposalTotals{}, err
	}

	input := pricing.ProposalInput{
		LineItems:   make([]pricing.LineAmounts, 0, len(lines)),
		Engineering: make([]decimal.Decimal, 0, len(engineering)),
		Expenses:    make([]decimal.Decimal, 0, len(expenses)),
		Taxes:       make([]decimal.Decimal, 0, len(taxes)),
	}

	for _, line := range lines {
		partner, err := s.effectivePartnerPrice(ctx, tx, line)
		if err != nil {
			return pricing.ProposalTotals{}, err
		}
		input.LineItems = append(input.LineItems, pricing.LineAmounts{
			Amount:               line.Amount,
			ExtendedPartnerPrice: partner.Mul(decimal.NewFromInt(line.Quantity)),
		})
	}
	for _, e := range engineering {
		input.Engineering = append(input.Engineering, e.Amount)
	}
	for _, e := range expenses {
		input.Expenses = append(input.Expenses, e.Amount)
	}
	for _, t := range taxes {
		input.Taxes = append(input.Taxes, t.Amount)
	}

	totals := pricing.ComputeProposalTotals(input)

	err = tx.WithContext(ctx).
		Model(&domain.Proposal{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"total_amount":   totals.TotalAmount,
			"total_cost":     totals.TotalCost,
			"gross_profit":   totals.GrossProfit,
			"margin_percent": totals.MarginPercent,
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		recomputeFailures.Inc()
		s.log.Error("failed to persist proposal totals",
			zap.Int64("proposal_id", p.ID),
			zap.Error(err),
		)
		return pricing.ProposalTotals{}, err
	}

	p.TotalAmount = totals.TotalAmount
	p.TotalCost = totals.TotalCost
	p.GrossProfit = totals.GrossProfit
	p.MarginPercent = totals.MarginPercent

	return totals, nil
}

// effectivePartnerPrice resolves the cost basis for one line: the per-line
// override when set, otherwise the catalog value, zero when the product is
// gone. A dangling product reference never fails aggregation.
func (s *Service) effectivePartnerPrice(ctx context.Context, tx *gorm.DB, line *domain.LineItem) (decimal.Decimal, error) {
	if line.PartnerPrice != nil {
		return *line.PartnerPrice, nil
	}
	product, err := s.products.FindByID(ctx, tx, line.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, nil
	}
	return product.PartnerPrice, nil
}

// taxBaseTx computes the pre-tax subtotal from the child collections inside
// the mutation transaction, before any tax row is written.
func (s *Service) taxBaseTx(ctx context.Context, tx *gorm.DB, proposalID int64) (decimal.Decimal, error) {
	lines, err := s.lines.WithTrx(tx).Find(ctx, &domain.LineItem{ProposalID: proposalID})
	if err != nil {
		return decimal.Zero, err
	}
	engineering, err := s.engineering.WithTrx(tx).Find(ctx, &domain.EngineeringEntry{ProposalID: proposalID})
	if err != nil {
		return decimal.Zero, err
	}
	expenses, err := s.expenses.WithTrx(tx).Find(ctx, &domain.ExpenseEntry{ProposalID: proposalID})
	if err != nil {
		return decimal.Zero, err
	}

	products := decimal.Zero
	for _, line := range lines {
		products = products.Add(line.Amount)
	}
	eng := decimal.Zero
	for _, e := range engineering {
		eng = eng.Add(e.Amount)
	}
	exp := decimal.Zero
	for _, e := range expenses {
		exp = exp.Add(e.Amount)
	}

	return pricing.TaxBase(products, eng, exp), nil
}
