package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/catalog/domain"
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
	Repo        domain.Repository
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	activitySvc activitydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("catalog.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	p, err := s.build(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, s.db, p.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionCreated, "product", p.ID, p.Name, nil)
	return p, nil
}

// BulkCreate inserts many catalog entries in a single transaction. Rows are
// validated up front; one bad row rejects the whole batch.
func (s *Service) BulkCreate(ctx context.Context, reqs []domain.CreateRequest) ([]domain.Product, error) {
	products := make([]*domain.Product, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		p, err := s.build(req)
		if err != nil {
			return nil, err
		}
		if seen[p.Code] {
			return nil, domain.ErrDuplicateCode
		}
		seen[p.Code] = true
		products = append(products, p)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			existing, err := s.repo.FindByCode(ctx, tx, p.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrDuplicateCode
			}
		}
		return s.repo.BatchCreate(ctx, tx, products)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, *p)
	}

	s.activitySvc.Record(ctx, activitydomain.ActionImported, "product", 0, "", map[string]any{
		"count": len(out),
	})
	return out, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Product, error) {
	filter := domain.ListRequest{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Active:   req.Active,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Product, error) {
	item, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.ListPrice != nil {
		if req.ListPrice.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		item.ListPrice = *req.ListPrice
	}
	if req.PartnerPrice != nil {
		if req.PartnerPrice.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		item.PartnerPrice = *req.PartnerPrice
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "product", item.ID, item.Name, nil)
	return item, nil
}

func (s *Service) Archive(ctx context.Context, id int64) (*domain.Product, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionArchived, "product", item.ID, item.Name, nil)
	return item, nil
}

func (s *Service) build(req domain.CreateRequest) (*domain.Product, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if req.ListPrice.IsNegative() || req.PartnerPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:           s.genID.Generate().Int64(),
		Code:         code,
		Name:         name,
		Category:     strings.TrimSpace(req.Category),
		ListPrice:    req.ListPrice,
		PartnerPrice: req.PartnerPrice,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	return p, nil
}
