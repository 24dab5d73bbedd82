package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a buyer-to-shop thread identified by GroupTitle.
type Conversation struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	GroupTitle    string    `gorm:"uniqueIndex;not null" json:"groupTitle"`
	UserID        string    `gorm:"type:varchar(36);index;not null" json:"-"`
	SellerID      string    `gorm:"type:varchar(36);index;not null" json:"-"`
	Members       []string  `gorm:"-" json:"members"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageID string    `json:"lastMessageId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);index;not null" json:"conversationId"`
	Sender         string    `gorm:"type:varchar(36);not null" json:"sender"`
	Text           string    `json:"text"`
	Image          string    `json:"images,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Conversation) AfterFind(tx *gorm.DB) error {
	c.Members = []string{c.UserID, c.SellerID}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every persisted type in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &TrustedDevice{},
		&Seller{}, &SellerTransaction{},
		&Product{}, &Review{},
		&Event{}, &Coupon{},
		&Order{}, &CartItem{},
		&Withdraw{},
		&Conversation{}, &Message{},
	}
}
