// Package repository provides a generic gorm-backed store shared by all
// feature services.
package repository

import (
	"context"

	"github.com/dealdesk/dealdesk/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a typed CRUD store over a single entity table.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Delete(ctx context.Context, resourceID int64) error
	Count(ctx context.Context, query *T) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
}
