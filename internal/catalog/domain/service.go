package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	BulkCreate(ctx context.Context, reqs []CreateRequest) ([]Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, req UpdateRequest) (*Product, error)
	Archive(ctx context.Context, id int64) (*Product, error)
}

type CreateRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	ListPrice    decimal.Decimal `json:"list_price"`
	PartnerPrice decimal.Decimal `json:"partner_price"`
	Active       *bool           `json:"active"`
	Metadata     map[string]any  `json:"metadata"`
}

type UpdateRequest struct {
	ID           int64
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	ListPrice    *decimal.Decimal `json:"list_price"`
	PartnerPrice *decimal.Decimal `json:"partner_price"`
	Active       *bool            `json:"active"`
	Metadata     map[string]any   `json:"metadata"`
}

type ListRequest struct {
	Name     string
	Category string
	Active   *bool
	SortBy   string
	OrderBy  string
}

var (
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrDuplicateCode = errors.New("duplicate_code")
	ErrNotFound      = errors.New("not_found")
)
