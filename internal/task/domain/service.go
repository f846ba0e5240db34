package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Task, error)
	List(ctx context.Context, req ListRequest) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, req UpdateRequest) (*Task, error)
	Complete(ctx context.Context, id int64) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

type CreateRequest struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	DueAt      *time.Time `json:"due_at"`
	ProposalID int64      `json:"proposal_id"`
	CustomerID int64      `json:"customer_id"`
}

type UpdateRequest struct {
	ID    int64
	Title *string    `json:"title"`
	Notes *string    `json:"notes"`
	DueAt *time.Time `json:"due_at"`
	Done  *bool      `json:"done"`
}

type ListRequest struct {
	Done       *bool
	ProposalID int64
	CustomerID int64
	SortBy     string
	OrderBy    string
}

var (
	ErrInvalidTitle = errors.New("invalid_title")
	ErrNotFound     = errors.New("not_found")
)
