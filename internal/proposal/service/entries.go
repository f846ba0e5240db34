package service

import (
	"context"
	"strings"
	"time"

	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/pricing"
	"github.com/dealdesk/dealdesk/internal/proposal/domain"
	"gorm.io/gorm"
)

func (s *Service) AddEngineeringEntry(ctx context.Context, proposalID int64, req domain.EngineeringRequest) (*domain.EngineeringEntry, error) {
	if req.Days.IsNegative() {
		return nil, domain.ErrInvalidDays
	}

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.EngineeringEntry{
		ID:          s.genID.Generate().Int64(),
		ProposalID:  proposalID,
		Description: strings.TrimSpace(req.Description),
		Days:        req.Days,
		DayRate:     req.DayRate,
		Amount:      pricing.EngineeringAmount(req.Days, req.DayRate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.engineering.WithTrx(tx).Create(ctx, entry); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"engineering_entry_id": entry.ID,
	})
	return entry, nil
}

func (s *Service) UpdateEngineeringEntry(ctx context.Context, proposalID, entryID int64, req domain.EngineeringUpdate) (*domain.EngineeringEntry, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	entry, err := s.engineering.FindOne(ctx, &domain.EngineeringEntry{ID: entryID, ProposalID: proposalID})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}

	if req.Description != nil {
		entry.Description = trimmedOrEmpty(req.Description)
	}
	if req.Days != nil {
		if req.Days.IsNegative() {
			return nil, domain.ErrInvalidDays
		}
		entry.Days = *req.Days
	}
	if req.DayRate != nil {
		entry.DayRate = *req.DayRate
	}
	entry.Amount = pricing.EngineeringAmount(entry.Days, entry.DayRate)
	entry.UpdatedAt = time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.engineering.WithTrx(tx).Save(ctx, entry); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"engineering_entry_id": entryID,
	})
	return entry, nil
}

func (s *Service) RemoveEngineeringEntry(ctx context.Context, proposalID, entryID int64) error {
	return s.removeEntry(ctx, proposalID, entryID, &domain.EngineeringEntry{ID: entryID, ProposalID: proposalID})
}

func (s *Service) AddExpense(ctx context.Context, proposalID int64, req domain.ExpenseRequest) (*domain.ExpenseEntry, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.ExpenseEntry{
		ID:          s.genID.Generate().Int64(),
		ProposalID:  proposalID,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.expenses.WithTrx(tx).Create(ctx, entry); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"expense_id": entry.ID,
	})
	return entry, nil
}

func (s *Service) UpdateExpense(ctx context.Context, proposalID, expenseID int64, req domain.ExpenseUpdate) (*domain.ExpenseEntry, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	entry, err := s.expenses.FindOne(ctx, &domain.ExpenseEntry{ID: expenseID, ProposalID: proposalID})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}

	if req.Description != nil {
		entry.Description = trimmedOrEmpty(req.Description)
	}
	if req.Amount != nil {
		entry.Amount = *req.Amount
	}
	entry.UpdatedAt = time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.expenses.WithTrx(tx).Save(ctx, entry); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"expense_id": expenseID,
	})
	return entry, nil
}

func (s *Service) RemoveExpense(ctx context.Context, proposalID, expenseID int64) error {
	return s.removeEntry(ctx, proposalID, expenseID, &domain.ExpenseEntry{ID: expenseID, ProposalID: proposalID})
}

// AddTax derives the tax amount from the pre-tax subtotal before the tax
// row is written, so the new tax never taxes itself or its siblings.
func (s *Service) AddTax(ctx context.Context, proposalID int64, req domain.TaxRequest) (*domain.CustomTax, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !validPercent(req.RatePercent) {
		return nil, domain.ErrInvalidRate
	}

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.CustomTax{
		ID:          s.genID.Generate().Int64(),
		ProposalID:  proposalID,
		Name:        name,
		RatePercent: req.RatePercent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		base, err := s.taxBaseTx(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		entry.Amount = pricing.PercentOf(base, entry.RatePercent)

		if err := s.taxes.WithTrx(tx).Create(ctx, entry); err != nil {
			return err
		}
		_, err = s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"tax_id": entry.ID,
	})
	return entry, nil
}

func (s *Service) UpdateTax(ctx context.Context, proposalID, taxID int64, req domain.TaxUpdate) (*domain.CustomTax, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	entry, err := s.taxes.FindOne(ctx, &domain.CustomTax{ID: taxID, ProposalID: proposalID})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}

	if req.Name != nil {
		name := trimmedOrEmpty(req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		entry.Name = name
	}
	if req.RatePercent != nil {
		if !validPercent(*req.RatePercent) {
			return nil, domain.ErrInvalidRate
		}
		entry.RatePercent = *req.RatePercent
	}
	entry.UpdatedAt = time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		base, err := s.taxBaseTx(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		entry.Amount = pricing.PercentOf(base, entry.RatePercent)

		if err := s.taxes.WithTrx(tx).Save(ctx, entry); err != nil {
			return err
		}
		_, err = s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"tax_id": taxID,
	})
	return entry, nil
}

func (s *Service) RemoveTax(ctx context.Context, proposalID, taxID int64) error {
	return s.removeEntry(ctx, proposalID, taxID, &domain.CustomTax{ID: taxID, ProposalID: proposalID})
}

// removeEntry deletes one child row and recomputes the aggregate in the
// same transaction. The filter must carry both the entry ID and the owning
// proposal ID so an entry can only be removed through its own proposal.
func (s *Service) removeEntry(ctx context.Context, proposalID, entryID int64, filter any) error {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).Where(filter).Delete(filter)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrEntryNotFound
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"entry_removed": entryID,
	})
	return nil
}
