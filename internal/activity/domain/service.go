package domain

import (
	"context"
	"errors"
	"time"
)

// Service records and lists activity entries. Record is fire-and-forget
// from the caller's perspective: a failed write is logged, never returned,
// so activity logging cannot fail a business operation.
type Service interface {
	Record(ctx context.Context, action, targetType string, targetID int64, note string, metadata map[string]any)
	List(ctx context.Context, req ListRequest) ([]Activity, error)
}

type ListRequest struct {
	Action     string
	TargetType string
	TargetID   int64
	Since      *time.Time
	Until      *time.Time
	Limit      int
}

var ErrInvalidTimeRange = errors.New("invalid_time_range")
