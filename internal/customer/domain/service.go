package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Customer, error)
	List(ctx context.Context, req ListRequest) ([]Customer, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	Update(ctx context.Context, req UpdateRequest) (*Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CreateRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Company  string         `json:"company"`
	Phone    string         `json:"phone"`
	Notes    string         `json:"notes"`
	Metadata map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID       int64
	Name     *string        `json:"name"`
	Email    *string        `json:"email"`
	Company  *string        `json:"company"`
	Phone    *string        `json:"phone"`
	Notes    *string        `json:"notes"`
	Metadata map[string]any `json:"metadata"`
}

type ListRequest struct {
	Name    string
	Company string
	SortBy  string
	OrderBy string
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("not_found")
)
