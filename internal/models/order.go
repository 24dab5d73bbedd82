package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. The first six are the ones a seller may set directly.
const (
	OrderProcessing       = "Processing"
	OrderTransferred      = "Transferred to delivery partner"
	OrderShipping         = "Shipping"
	OrderReceived         = "Received"
	OrderOnTheWay         = "On the way"
	OrderDelivered        = "Delivered"
	OrderProcessingRefund = "Processing refund"
	OrderRefundSuccess    = "Refund Success"
)

const PaymentSucceeded = "Succeeded"

// Accepted payment types.
const (
	PaymentCOD      = "Cash On Delivery"
	PaymentRazorpay = "Razorpay"
	PaymentGPay     = "UPI - Google Pay"
	PaymentPhonePe  = "UPI - PhonePe"
	PaymentPaytm    = "UPI - Paytm"
	PaymentCard     = "Card"
)

// CartItem is one order line. SellerID is the account that listed ProductID.
type CartItem struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	OrderID    string  `gorm:"type:varchar(36);index;not null" json:"-"`
	ProductID  string  `gorm:"type:varchar(36);index;not null" json:"productId"`
	SellerID   string  `gorm:"type:varchar(36);index;not null" json:"sellerId"`
	Name       string  `json:"name"`
	Qty        int     `gorm:"not null" json:"qty"`
	Price      float64 `json:"price"`
	Image      string  `json:"image,omitempty"`
	IsReviewed bool    `json:"isReviewed"`
}

// ShippingAddress is copied onto the order at checkout.
type ShippingAddress struct {
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Country     string `json:"country"`
	ZipCode     string `json:"zipCode"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

// Order is immutable after checkout except for Status, PaymentInfo and DeliveredAt.
type Order struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Cart            []CartItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"cart"`
	ShippingAddress ShippingAddress `gorm:"serializer:json" json:"shippingAddress"`
	UserID          string          `gorm:"type:varchar(36);index;not null" json:"user"`
	TotalPrice      float64         `gorm:"not null" json:"totalPrice"`
	PaymentInfo     PaymentInfo     `gorm:"serializer:json" json:"paymentInfo"`
	Status          string          `gorm:"not null;default:Processing" json:"status"`
	PaidAt          time.Time       `json:"paidAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// HasSeller reports whether any cart line belongs to sellerID.
func (o *Order) HasSeller(sellerID string) bool {
	for _, item := range o.Cart {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}
