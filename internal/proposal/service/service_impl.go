package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	catalogdomain "github.com/dealdesk/dealdesk/internal/catalog/domain"
	customerdomain "github.com/dealdesk/dealdesk/internal/customer/domain"
	"github.com/dealdesk/dealdesk/internal/pricing"
	"github.com/dealdesk/dealdesk/internal/proposal/domain"
	"github.com/dealdesk/dealdesk/pkg/db/option"
	"github.com/dealdesk/dealdesk/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Products    catalogdomain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	products    catalogdomain.Repository
	activitySvc activitydomain.Service

	proposals   repository.Repository[domain.Proposal]
	lines       repository.Repository[domain.LineItem]
	engineering repository.Repository[domain.EngineeringEntry]
	expenses    repository.Repository[domain.ExpenseEntry]
	taxes       repository.Repository[domain.CustomTax]
	customers   repository.Repository[customerdomain.Customer]

	locks *proposalLocks
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("proposal.service"),
		genID:       p.GenID,
		products:    p.Products,
		activitySvc: p.ActivitySvc,

		proposals:   repository.ProvideStore[domain.Proposal](p.DB),
		lines:       repository.ProvideStore[domain.LineItem](p.DB),
		engineering: repository.ProvideStore[domain.EngineeringEntry](p.DB),
		expenses:    repository.ProvideStore[domain.ExpenseEntry](p.DB),
		taxes:       repository.ProvideStore[domain.CustomTax](p.DB),
		customers:   repository.ProvideStore[customerdomain.Customer](p.DB),

		locks: newProposalLocks(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Proposal, error) {
	cust, err := s.customers.FindOne(ctx, &customerdomain.Customer{ID: req.CustomerID})
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, domain.ErrCustomerNotFound
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Proposal{
		ID:         s.genID.Generate().Int64(),
		Number:     number,
		CustomerID: req.CustomerID,
		Status:     domain.StatusDraft,
		Notes:      req.Notes,
		IssuedAt:   req.IssuedAt,

		TotalAmount:   decimal.Zero,
		TotalCost:     decimal.Zero,
		GrossProfit:   decimal.Zero,
		MarginPercent: decimal.Zero,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionCreated, "proposal", p.ID, p.Number, nil)
	return p, nil
}

// Get loads a proposal with all four child collections.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Proposal, error) {
	var p domain.Proposal
	err := s.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Engineering").
		Preload("Expenses").
		Preload("Taxes").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Proposal, error) {
	filter := &domain.Proposal{
		CustomerID: req.CustomerID,
		Status:     req.Status,
	}

	items, err := s.proposals.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy(req.SortBy, req.OrderBy, map[string]bool{
			"created_at": true,
			"updated_at": true,
			"number":     true,
		})),
	)
	if err != nil {
		return nil, err
	}

	proposals := make([]domain.Proposal, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		proposals = append(proposals, *item)
	}
	return proposals, nil
}

// Update holds the proposal lock and writes only the scalar columns, so it
// cannot overwrite aggregate figures committed by a concurrent child
// mutation between its load and its save.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Proposal, error) {
	unlock := s.locks.Lock(req.ID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		p.Status = *req.Status
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if req.IssuedAt != nil {
		p.IssuedAt = req.IssuedAt
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	p.UpdatedAt = time.Now().UTC()
	err = s.db.WithContext(ctx).
		Model(&domain.Proposal{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"status":     p.Status,
			"notes":      p.Notes,
			"issued_at":  p.IssuedAt,
			"metadata":   p.Metadata,
			"updated_at": p.UpdatedAt,
		}).Error
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", p.ID, p.Number, nil)
	return p, nil
}

// Delete removes the proposal and all owned child entries.
func (s *Service) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{
			&domain.LineItem{},
			&domain.EngineeringEntry{},
			&domain.ExpenseEntry{},
			&domain.CustomTax{},
		} {
			if err := tx.WithContext(ctx).Where("proposal_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.WithContext(ctx).Delete(&domain.Proposal{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionDeleted, "proposal", id, p.Number, nil)
	return nil
}

func (s *Service) AddLineItem(ctx context.Context, proposalID int64, req domain.LineItemRequest) (*domain.LineItem, error) {
	items, err := s.AddLineItems(ctx, proposalID, []domain.LineItemRequest{req})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// AddLineItems inserts a batch of product lines in one transaction with a
// single aggregate recompute, so bulk imports stay linear in batch size.
func (s *Service) AddLineItems(ctx context.Context, proposalID int64, reqs []domain.LineItemRequest) ([]domain.LineItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]*domain.LineItem, 0, len(reqs))
	for _, req := range reqs {
		item, err := s.buildLineItem(ctx, proposalID, req, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lines.WithTrx(tx).BatchCreate(ctx, items); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"line_items_added": len(out),
	})
	return out, nil
}

func (s *Service) UpdateLineItem(ctx context.Context, proposalID, lineItemID int64, req domain.LineItemUpdate) (*domain.LineItem, error) {
	unlock := s.locks.Lock(proposalID)
	defer unlock()

	p, err := s.findProposal(ctx, s.db, proposalID)
	if err != nil {
		return nil, err
	}

	item, err := s.lines.FindOne(ctx, &domain.LineItem{ID: lineItemID, ProposalID: proposalID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrEntryNotFound
	}

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.DiscountPercent != nil {
		if !validPercent(*req.DiscountPercent) {
			return nil, domain.ErrInvalidDiscount
		}
		item.DiscountPercent = *req.DiscountPercent
	}
	if req.Multiplier != nil && req.Multiplier.IsPositive() {
		item.Multiplier = *req.Multiplier
	}
	if req.PartnerPrice != nil {
		item.PartnerPrice = req.PartnerPrice
	}

	// Re-derive unit price and amount with the canonical formula. A line
	// whose product was deleted from the catalog prices as zero.
	product, err := s.products.FindByID(ctx, s.db, item.ProductID)
	if err != nil {
		return nil, err
	}
	listPrice, partnerPrice := productPrices(product)
	if item.PartnerPrice != nil {
		partnerPrice = *item.PartnerPrice
	}

	res := pricing.ComputeLineItem(pricing.LineItemInput{
		ListPrice:       listPrice,
		PartnerPrice:    partnerPrice,
		Quantity:        item.Quantity,
		DiscountPercent: item.DiscountPercent,
		Multiplier:      item.Multiplier,
	})
	item.UnitPrice = res.UnitPrice
	item.Amount = res.Amount
	item.UpdatedAt = time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lines.WithTrx(tx).Save(ctx, item); err != nil {
			return err
		}
		_, err := s.recomputeTx(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "proposal", proposalID, p.Number, map[string]any{
		"line_item_id": lineItemID,
	})
	return item, nil
}

func (s *Service) RemoveLineItem(ctx context.Context, proposalID, lineItemID int64) error {
	return s.removeEntry(ctx, proposalID, lineItemID, &domain.LineItem{ID: lineItemID, ProposalID: proposalID})
}

func (s *Service) buildLineItem(ctx context.Context, proposalID int64, req domain.LineItemRequest, now time.Time) (*domain.LineItem, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if !validPercent(req.DiscountPercent) {
		return nil, domain.ErrInvalidDiscount
	}

	product, err := s.products.FindByID(ctx, s.db, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	multiplier := decimal.NewFromInt(1)
	if req.Multiplier != nil && req.Multiplier.IsPositive() {
		multiplier = *req.Multiplier
	}

	partnerPrice := product.PartnerPrice
	if req.PartnerPrice != nil {
		partnerPrice = *req.PartnerPrice
	}

	res := pricing.ComputeLineItem(pricing.LineItemInput{
		ListPrice:       product.ListPrice,
		PartnerPrice:    partnerPrice,
		Quantity:        req.Quantity,
		DiscountPercent: req.DiscountPercent,
		Multiplier:      multiplier,
	})

	return &domain.LineItem{
		ID:              s.genID.Generate().Int64(),
		ProposalID:      proposalID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		DiscountPercent: req.DiscountPercent,
		Multiplier:      multiplier,
		PartnerPrice:    req.PartnerPrice,
		UnitPrice:       res.UnitPrice,
		Amount:          res.Amount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// nextNumber derives the next proposal number from the highest one ever
// assigned, not a row count, so the sequence stays monotonic across
// deletes and a reissued number can never collide with the unique index.
func (s *Service) nextNumber(ctx context.Context) (string, error) {
	var seq int64
	err := s.db.WithContext(ctx).
		Model(&domain.Proposal{}).
		Select("COALESCE(MAX(CAST(SUBSTR(number, 3) AS INTEGER)), 0)").
		Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("P-%05d", seq+1), nil
}

func (s *Service) findProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error) {
	var p domain.Proposal
	err := db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func validPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

func productPrices(p *catalogdomain.Product) (list, partner decimal.Decimal) {
	if p == nil {
		return decimal.Zero, decimal.Zero
	}
	return p.ListPrice, p.PartnerPrice
}

func trimmedOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
