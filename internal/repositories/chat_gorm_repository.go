package repositories

import (
	"context"
	"fmt"

	"dukan/internal/models"

	"gorm.io/gorm"
)

type GORMConversationRepository struct {
	db *gorm.DB
}

func NewGORMConversationRepository(db *gorm.DB) *GORMConversationRepository {
	return &GORMConversationRepository{db: db}
}

func (r *GORMConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", translate(err))
	}
	conversation.Members = []string{conversation.UserID, conversation.SellerID}
	return nil
}

func (r *GORMConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, translate(err))
	}
	return &conversation, nil
}

func (r *GORMConversationRepository) GetByGroupTitle(ctx context.Context, groupTitle string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "group_title = ?", groupTitle).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", groupTitle, translate(err))
	}
	return &conversation, nil
}

func (r *GORMConversationRepository) ListForMember(ctx context.Context, memberID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR seller_id = ?", memberID, memberID).
		Order("updated_at DESC").Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations of %s: %w", memberID, err)
	}
	return conversations, nil
}

func (r *GORMConversationRepository) UpdateLastMessage(ctx context.Context, id, text, messageID string) (*models.Conversation, error) {
	res := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_message": text, "last_message_id": messageID})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update conversation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

type GORMMessageRepository struct {
	db *gorm.DB
}

func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{db: db}
}

func (r *GORMMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *GORMMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of conversation %s: %w", conversationID, err)
	}
	return messages, nil
}
