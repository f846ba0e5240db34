package domain

import (
	"context"
	"errors"
	"time"

	"github.com/dealdesk/dealdesk/internal/pricing"
	"github.com/shopspring/decimal"
)

// Service is the single mutation entry point for proposals. Every mutation
// to a child entity recomputes and persists the proposal aggregate inside
// the same transaction before returning.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Proposal, error)
	Get(ctx context.Context, id int64) (*Proposal, error)
	List(ctx context.Context, req ListRequest) ([]Proposal, error)
	Update(ctx context.Context, req UpdateRequest) (*Proposal, error)
	Delete(ctx context.Context, id int64) error

	AddLineItem(ctx context.Context, proposalID int64, req LineItemRequest) (*LineItem, error)
	AddLineItems(ctx context.Context, proposalID int64, reqs []LineItemRequest) ([]LineItem, error)
	UpdateLineItem(ctx context.Context, proposalID, lineItemID int64, req LineItemUpdate) (*LineItem, error)
	RemoveLineItem(ctx context.Context, proposalID, lineItemID int64) error

	AddEngineeringEntry(ctx context.Context, proposalID int64, req EngineeringRequest) (*EngineeringEntry, error)
	UpdateEngineeringEntry(ctx context.Context, proposalID, entryID int64, req EngineeringUpdate) (*EngineeringEntry, error)
	RemoveEngineeringEntry(ctx context.Context, proposalID, entryID int64) error

	AddExpense(ctx context.Context, proposalID int64, req ExpenseRequest) (*ExpenseEntry, error)
	UpdateExpense(ctx context.Context, proposalID, expenseID int64, req ExpenseUpdate) (*ExpenseEntry, error)
	RemoveExpense(ctx context.Context, proposalID, expenseID int64) error

	AddTax(ctx context.Context, proposalID int64, req TaxRequest) (*CustomTax, error)
	UpdateTax(ctx context.Context, proposalID, taxID int64, req TaxUpdate) (*CustomTax, error)
	RemoveTax(ctx context.Context, proposalID, taxID int64) error

	// Recompute re-derives and persists the aggregate figures from the
	// current child collections. Idempotent; safe to call after any
	// mutation.
	Recompute(ctx context.Context, proposalID int64) (pricing.ProposalTotals, error)
}

type CreateRequest struct {
	CustomerID int64          `json:"customer_id"`
	Notes      string         `json:"notes"`
	IssuedAt   *time.Time     `json:"issued_at"`
	Metadata   map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID       int64
	Status   *ProposalStatus `json:"status"`
	Notes    *string         `json:"notes"`
	IssuedAt *time.Time      `json:"issued_at"`
	Metadata map[string]any  `json:"metadata"`
}

type ListRequest struct {
	CustomerID int64
	Status     ProposalStatus
	SortBy     string
	OrderBy    string
}

type LineItemRequest struct {
	ProductID       int64            `json:"product_id"`
	Quantity        int64            `json:"quantity"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	Multiplier      *decimal.Decimal `json:"multiplier"`
	PartnerPrice    *decimal.Decimal `json:"partner_price"`
}

type LineItemUpdate struct {
	Quantity        *int64           `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	Multiplier      *decimal.Decimal `json:"multiplier"`
	PartnerPrice    *decimal.Decimal `json:"partner_price"`
}

type EngineeringRequest struct {
	Description string          `json:"description"`
	Days        decimal.Decimal `json:"days"`
	DayRate     decimal.Decimal `json:"day_rate"`
}

type EngineeringUpdate struct {
	Description *string          `json:"description"`
	Days        *decimal.Decimal `json:"days"`
	DayRate     *decimal.Decimal `json:"day_rate"`
}

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type ExpenseUpdate struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

type TaxRequest struct {
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

type TaxUpdate struct {
	Name        *string          `json:"name"`
	RatePercent *decimal.Decimal `json:"rate_percent"`
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrEntryNotFound    = errors.New("entry_not_found")
	ErrProductNotFound  = errors.New("product_not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidDiscount  = errors.New("invalid_discount")
	ErrInvalidRate      = errors.New("invalid_rate")
	ErrInvalidDays      = errors.New("invalid_days")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidName      = errors.New("invalid_name")
)
