// Package domain contains the proposal aggregate: the proposal itself and
// its four owned entry categories. A proposal owns its children; they are
// deleted with it.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProposalStatus represents proposal lifecycle states.
type ProposalStatus string

const (
	StatusDraft   ProposalStatus = "draft"
	StatusPending ProposalStatus = "pending"
	StatusSent    ProposalStatus = "sent"
	StatusWon     ProposalStatus = "won"
	StatusLost    ProposalStatus = "lost"
	StatusExpired ProposalStatus = "expired"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s ProposalStatus) bool {
	switch s {
	case StatusDraft, StatusPending, StatusSent, StatusWon, StatusLost, StatusExpired:
		return true
	}
	return false
}

// Proposal is the aggregate root. TotalAmount, TotalCost, GrossProfit and
// MarginPercent are persisted caches of the aggregate; after every committed
// mutation to a child entity they equal the figures derived from the current
// child collections.
type Proposal struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	Number     string            `json:"number" gorm:"type:text;not null;uniqueIndex:ux_proposals_number"`
	CustomerID int64             `json:"customer_id" gorm:"not null;index"`
	Status     ProposalStatus    `json:"status" gorm:"type:text;not null;default:'draft'"`
	Notes      string            `json:"notes" gorm:"type:text"`
	IssuedAt   *time.Time        `json:"issued_at,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`

	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric(15,2);not null"`
	TotalCost     decimal.Decimal `json:"total_cost" gorm:"type:numeric(15,2);not null"`
	GrossProfit   decimal.Decimal `json:"gross_profit" gorm:"type:numeric(15,2);not null"`
	MarginPercent decimal.Decimal `json:"margin_percent" gorm:"type:numeric(8,4);not null"`

	LineItems   []LineItem         `json:"line_items,omitempty" gorm:"foreignKey:ProposalID"`
	Engineering []EngineeringEntry `json:"engineering,omitempty" gorm:"foreignKey:ProposalID"`
	Expenses    []ExpenseEntry     `json:"expenses,omitempty" gorm:"foreignKey:ProposalID"`
	Taxes       []CustomTax        `json:"taxes,omitempty" gorm:"foreignKey:ProposalID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Proposal) TableName() string { return "proposals" }

// LineItem is one product line on a proposal. UnitPrice and Amount are
// derived at mutation time and persisted; PartnerPrice overrides the
// catalog cost basis when set.
type LineItem struct {
	ID              int64            `json:"id" gorm:"primaryKey"`
	ProposalID      int64            `json:"proposal_id" gorm:"not null;index"`
	ProductID       int64            `json:"product_id" gorm:"not null;index"`
	Quantity        int64            `json:"quantity" gorm:"not null;default:1"`
	DiscountPercent decimal.Decimal  `json:"discount_percent" gorm:"type:numeric(6,3);not null"`
	Multiplier      decimal.Decimal  `json:"multiplier" gorm:"type:numeric(6,3);not null"`
	PartnerPrice    *decimal.Decimal `json:"partner_price,omitempty" gorm:"type:numeric(15,2)"`
	UnitPrice       decimal.Decimal  `json:"unit_price" gorm:"type:numeric(15,2);not null"`
	Amount          decimal.Decimal  `json:"amount" gorm:"type:numeric(15,2);not null"`
	CreatedAt       time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "proposal_line_items" }

// EngineeringEntry is a services entry: amount = days × day rate.
type EngineeringEntry struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	ProposalID  int64           `json:"proposal_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Days        decimal.Decimal `json:"days" gorm:"type:numeric(8,2);not null"`
	DayRate     decimal.Decimal `json:"day_rate" gorm:"type:numeric(15,2);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (EngineeringEntry) TableName() string { return "proposal_engineering_entries" }

// ExpenseEntry carries a direct currency amount, not a derived one.
type ExpenseEntry struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	ProposalID  int64           `json:"proposal_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExpenseEntry) TableName() string { return "proposal_expenses" }

// CustomTax applies a rate against the proposal's pre-tax subtotal. The
// amount is derived from the tax base at mutation time, before the tax
// joins the collection, so taxes never tax themselves.
type CustomTax struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	ProposalID  int64           `json:"proposal_id" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	RatePercent decimal.Decimal `json:"rate_percent" gorm:"type:numeric(6,3);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomTax) TableName() string { return "proposal_custom_taxes" }
