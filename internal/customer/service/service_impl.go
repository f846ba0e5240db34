package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/customer/domain"
	"github.com/dealdesk/dealdesk/pkg/db/option"
	"github.com/dealdesk/dealdesk/pkg/repository"
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
	ActivitySvc activitydomain.Service
}

type Service struct {
	log         *zap.Logger
	genID       *snowflake.Node
	repo        repository.Repository[domain.Customer]
	activitySvc activitydomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("customer.service"),
		genID:       p.GenID,
		repo:        repository.ProvideStore[domain.Customer](p.DB),
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	c := &domain.Customer{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Company:   strings.TrimSpace(req.Company),
		Phone:     strings.TrimSpace(req.Phone),
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		c.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionCreated, "customer", c.ID, c.Name, nil)
	return c, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Customer, error) {
	filter := &domain.Customer{
		Name:    strings.TrimSpace(req.Name),
		Company: strings.TrimSpace(req.Company),
	}

	items, err := s.repo.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy(req.SortBy, req.OrderBy, map[string]bool{
			"created_at": true,
			"updated_at": true,
			"name":       true,
		})),
	)
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	item, err := s.repo.FindOne(ctx, &domain.Customer{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Customer, error) {
	item, err := s.repo.FindOne(ctx, &domain.Customer{ID: req.ID})
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
	if req.Email != nil {
		item.Email = strings.TrimSpace(*req.Email)
	}
	if req.Company != nil {
		item.Company = strings.TrimSpace(*req.Company)
	}
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "customer", item.ID, item.Name, nil)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.FindOne(ctx, &domain.Customer{ID: id})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionDeleted, "customer", id, item.Name, nil)
	return nil
}
