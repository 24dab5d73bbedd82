package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is a percentage discount code owned by a seller.
type Coupon struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name            string    `gorm:"not null;uniqueIndex:idx_seller_coupon" json:"name"`
	Value           int       `gorm:"not null" json:"value"`
	MinAmount       float64   `json:"minAmount"`
	MaxAmount       *float64  `json:"maxAmount"`
	SellerID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_seller_coupon" json:"seller"`
	SelectedProduct string    `json:"selectedProduct,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
