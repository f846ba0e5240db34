package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/internal/task/domain"
	"github.com/dealdesk/dealdesk/pkg/db/option"
	"github.com/dealdesk/dealdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        repository.Repository[domain.Task]
	activitySvc activitydomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("task.service"),
		genID:       p.GenID,
		repo:        repository.ProvideStore[domain.Task](p.DB),
		activitySvc: p.ActivitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:         s.genID.Generate().Int64(),
		Title:      title,
		Notes:      req.Notes,
		DueAt:      req.DueAt,
		ProposalID: req.ProposalID,
		CustomerID: req.CustomerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionCreated, "task", t.ID, t.Title, nil)
	return t, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Task, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Task{})

	if req.Done != nil {
		stmt = stmt.Where("done = ?", *req.Done)
	}
	if req.ProposalID != 0 {
		stmt = stmt.Where("proposal_id = ?", req.ProposalID)
	}
	if req.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", req.CustomerID)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(req.SortBy, req.OrderBy, map[string]bool{
		"created_at": true,
		"due_at":     true,
		"title":      true,
	})).Apply(stmt)

	var tasks []domain.Task
	if err := stmt.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Task, error) {
	item, err := s.repo.FindOne(ctx, &domain.Task{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Task, error) {
	item, err := s.repo.FindOne(ctx, &domain.Task{ID: req.ID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		item.Title = title
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.DueAt != nil {
		item.DueAt = req.DueAt
	}
	if req.Done != nil {
		item.Done = *req.Done
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionUpdated, "task", item.ID, item.Title, nil)
	return item, nil
}

func (s *Service) Complete(ctx context.Context, id int64) (*domain.Task, error) {
	item, err := s.repo.FindOne(ctx, &domain.Task{ID: id})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Done = true
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionCompleted, "task", item.ID, item.Title, nil)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.FindOne(ctx, &domain.Task{ID: id})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.activitySvc.Record(ctx, activitydomain.ActionDeleted, "task", id, item.Title, nil)
	return nil
}
