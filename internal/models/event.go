package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventRunning   = "Running"
	EventCompleted = "Completed"
	EventCancelled = "Cancelled"
)

// Event is a time-boxed promotional listing.
type Event struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID      string    `gorm:"type:varchar(36);index;not null" json:"seller"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `gorm:"not null" json:"description"`
	Category      string    `gorm:"not null" json:"category"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	StartDate     time.Time `json:"startDate"`
	FinishDate    time.Time `json:"finishDate"`
	Status        string    `gorm:"type:varchar(16);not null;default:Running" json:"status"`
	OriginalPrice float64   `json:"originalPrice"`
	DiscountPrice float64   `gorm:"not null" json:"discountPrice"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
	SoldOut       int       `gorm:"not null;default:0" json:"soldOut"`
	Images        []string  `gorm:"serializer:json" json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
