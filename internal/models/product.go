package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog item listed by a seller.
type Product struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID      string    `gorm:"type:varchar(36);index;not null" json:"seller"`
	Name          string    `gorm:"not null" json:"name" validate:"required,max=2000"`
	Description   string    `gorm:"not null" json:"description" validate:"required,max=8000"`
	Category      string    `gorm:"not null" json:"category" validate:"required"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	OriginalPrice float64   `json:"originalPrice" validate:"gte=0"`
	DiscountPrice float64   `gorm:"not null" json:"discountPrice" validate:"required,gte=0"`
	Stock         int       `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	SoldOut       int       `gorm:"not null;default:0" json:"soldOut"`
	Images        []string  `gorm:"serializer:json" json:"images"`
	Ratings       float64   `gorm:"not null;default:0" json:"ratings"`
	Reviews       []Review  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Review is one buyer's rating of a product; a user has at most one per product.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_reviewer" json:"-"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_product_reviewer" json:"user"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
