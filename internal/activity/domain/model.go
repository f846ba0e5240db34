package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Activity is one entry in the append-only activity feed. Every successful
// mutation in the customer, catalog, proposal and task services records one.
type Activity struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	Action     string            `json:"action" gorm:"type:text;not null;index"`
	TargetType string            `json:"target_type" gorm:"type:text;not null;index"`
	TargetID   int64             `json:"target_id" gorm:"index"`
	Note       string            `json:"note" gorm:"type:text"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (Activity) TableName() string { return "activities" }

const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionArchived   = "archived"
	ActionImported   = "imported"
	ActionCompleted  = "completed"
	ActionRecomputed = "recomputed"
)
