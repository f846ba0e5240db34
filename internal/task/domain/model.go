package domain

import "time"

// Task is a follow-up item, optionally linked to a proposal or customer.
type Task struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"type:text;not null"`
	Notes      string     `json:"notes" gorm:"type:text"`
	DueAt      *time.Time `json:"due_at,omitempty" gorm:"index"`
	Done       bool       `json:"done" gorm:"not null;default:false;index"`
	ProposalID int64      `json:"proposal_id,omitempty" gorm:"index"`
	CustomerID int64      `json:"customer_id,omitempty" gorm:"index"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Task) TableName() string { return "tasks" }
