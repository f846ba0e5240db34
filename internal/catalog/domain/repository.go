package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	BatchCreate(ctx context.Context, db *gorm.DB, products []*Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
}
