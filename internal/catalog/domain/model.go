package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is a catalog entry shared across proposals. ListPrice is the
// customer-facing price, PartnerPrice the cost basis. PartnerPrice is
// typically at or below ListPrice but that is not enforced.
type Product struct {
	ID           int64             `json:"id" gorm:"primaryKey"`
	Code         string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_products_code"`
	Name         string            `json:"name" gorm:"type:text;not null"`
	Category     string            `json:"category" gorm:"type:text;index"`
	ListPrice    decimal.Decimal   `json:"list_price" gorm:"type:numeric(15,2);not null"`
	PartnerPrice decimal.Decimal   `json:"partner_price" gorm:"type:numeric(15,2);not null"`
	Active       bool              `json:"active" gorm:"not null;default:true"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
