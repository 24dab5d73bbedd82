package repositories

import (
	"context"

	"dukan/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	GetByGroupTitle(ctx context.Context, groupTitle string) (*models.Conversation, error)
	// ListForMember returns conversations memberID belongs to, most recently
	// active first.
	ListForMember(ctx context.Context, memberID string) ([]models.Conversation, error)
	UpdateLastMessage(ctx context.Context, id, text, messageID string) (*models.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
}
