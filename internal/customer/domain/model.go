package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Customer struct {
	ID        int64             `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"type:text;not null"`
	Email     string            `json:"email" gorm:"type:text"`
	Company   string            `json:"company" gorm:"type:text"`
	Phone     string            `json:"phone" gorm:"type:text"`
	Notes     string            `json:"notes" gorm:"type:text"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }
