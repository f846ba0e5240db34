package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dealdesk/dealdesk/internal/activity/domain"
	"github.com/dealdesk/dealdesk/pkg/db/option"
	"github.com/dealdesk/dealdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Activity]
}

func NewService(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Activity](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, action, targetType string, targetID int64, note string, metadata map[string]any) {
	action = strings.TrimSpace(action)
	targetType = strings.TrimSpace(targetType)
	if action == "" || targetType == "" {
		return
	}

	entry := &domain.Activity{
		ID:         s.genID.Generate().Int64(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Note:       strings.TrimSpace(note),
		CreatedAt:  time.Now().UTC(),
	}
	if metadata != nil {
		entry.Metadata = datatypes.JSONMap(metadata)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn("failed to record activity",
			zap.String("action", action),
			zap.String("target_type", targetType),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Activity, error) {
	if req.Since != nil && req.Until != nil && req.Until.Before(*req.Since) {
		return nil, domain.ErrInvalidTimeRange
	}

	filter := &domain.Activity{
		Action:     strings.TrimSpace(req.Action),
		TargetType: strings.TrimSpace(req.TargetType),
		TargetID:   req.TargetID,
	}

	opts := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
	}
	if req.Since != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.GTE,
			Value:    *req.Since,
		}))
	}
	if req.Until != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LTE,
			Value:    *req.Until,
		}))
	}
	if req.Limit > 0 {
		opts = append(opts, option.WithLimit(req.Limit))
	}

	items, err := s.repo.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		activities = append(activities, *item)
	}
	return activities, nil
}
