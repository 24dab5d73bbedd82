package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger line statuses written by the settlement flows.
const (
	TxStatusProcessing = "Processing"
	TxStatusRefunded   = "Refunded"
)

// Seller is the shop profile owned by an account with role seller.
type Seller struct {
	ID               string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID           string              `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	ShopName         string              `gorm:"not null" json:"shopName"`
	ShopNameKey      string              `gorm:"uniqueIndex;not null" json:"-"`
	PhoneNumber      string              `json:"phoneNumber"`
	ShopAddress      string              `json:"shopAddress"`
	ZipCode          string              `json:"zipCode"`
	Description      string              `json:"description"`
	ShopAvatar       string              `json:"shopAvatar,omitempty"`
	AvailableBalance float64             `gorm:"not null;default:0" json:"availableBalance"`
	WithdrawMethod   *WithdrawMethod     `gorm:"serializer:json" json:"withdrawMethod"`
	Transactions     []SellerTransaction `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"transactions"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// WithdrawMethod holds the bank account payouts are sent to.
type WithdrawMethod struct {
	BankName          string `json:"bankName" validate:"required"`
	BankCountry       string `json:"bankCountry" validate:"required"`
	BankSwiftCode     string `json:"bankSwiftCode" validate:"required"`
	BankAccountNumber string `json:"bankAccountNumber" validate:"required"`
	BankHolderName    string `json:"bankHolderName" validate:"required"`
	BankAddress       string `json:"bankAddress" validate:"required"`
}

// SellerTransaction is one append-only ledger line.
type SellerTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SellerID  string    `gorm:"type:varchar(36);index;not null" json:"-"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.ShopNameKey = ShopNameKey(s.ShopName)
	return nil
}

// ShopNameKey is the case-insensitive uniqueness key for a shop name.
func ShopNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
