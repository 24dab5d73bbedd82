package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WithdrawProcessing = "Processing"
	WithdrawApproved   = "Approved"
	WithdrawCompleted  = "Completed"
	WithdrawRejected   = "Rejected"
	// WithdrawSucceed is what admin approval writes.
	WithdrawSucceed = "succeed"
)

// Withdraw is a payout request. SellerID is the seller's account id.
type Withdraw struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SellerID  string    `gorm:"type:varchar(36);index;not null" json:"seller"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Status    string    `gorm:"not null;default:Processing" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *Withdraw) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
