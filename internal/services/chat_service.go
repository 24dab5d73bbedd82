package services

import (
	"context"
	"errors"
	"strings"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"go.uber.org/zap"
)

type CreateConversationInput struct {
	GroupTitle string `json:"groupTitle"`
	UserID     string `json:"userId"`
	SellerID   string `json:"sellerId"`
}

type CreateMessageInput struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	Images         string `json:"images"`
}

// ChatService stores buyer-to-shop conversations. Live delivery is the
// realtime hub's job.
type ChatService struct {
	store repositories.Store
	log   *zap.Logger
}

func NewChatService(store repositories.Store, log *zap.Logger) *ChatService {
	return &ChatService{store: store, log: log}
}

// CreateConversation returns the conversation with the given group title,
// creating it first if needed. created reports whether it is new.
func (s *ChatService) CreateConversation(ctx context.Context, actorID string, in CreateConversationInput) (conv *models.Conversation, created bool, err error) {
	if in.UserID == "" || in.SellerID == "" {
		return nil, false, apperror.BadRequest("userId and sellerId are required")
	}
	if actorID != in.UserID && actorID != in.SellerID {
		return nil, false, apperror.Forbidden("You are not a member of this conversation")
	}
	if strings.TrimSpace(in.GroupTitle) == "" {
		in.GroupTitle = in.UserID + in.SellerID
	}

	conv, err = s.store.Conversations().GetByGroupTitle(ctx, in.GroupTitle)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, apperror.Internal("Failed to create conversation", err)
	}

	conv = &models.Conversation{GroupTitle: in.GroupTitle, UserID: in.UserID, SellerID: in.SellerID}
	if err := s.store.Conversations().Create(ctx, conv); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			existing, gerr := s.store.Conversations().GetByGroupTitle(ctx, in.GroupTitle)
			if gerr == nil {
				return existing, false, nil
			}
		}
		return nil, false, apperror.Internal("Failed to create conversation", err)
	}
	return conv, true, nil
}

// ListConversations returns memberID's conversations, most recently active first.
func (s *ChatService) ListConversations(ctx context.Context, memberID string) ([]models.Conversation, error) {
	convs, err := s.store.Conversations().ListForMember(ctx, memberID)
	if err != nil {
		return nil, apperror.Internal("Failed to list conversations", err)
	}
	return convs, nil
}

// UpdateLastMessage records the preview shown in conversation lists.
func (s *ChatService) UpdateLastMessage(ctx context.Context, actorID, conversationID, lastMessage, lastMessageID string) (*models.Conversation, error) {
	if _, err := s.memberConversation(ctx, actorID, conversationID); err != nil {
		return nil, err
	}
	conv, err := s.store.Conversations().UpdateLastMessage(ctx, conversationID, lastMessage, lastMessageID)
	if err != nil {
		return nil, apperror.Internal("Failed to update last message", err)
	}
	return conv, nil
}

// CreateMessage stores a message from senderID and makes it the
// conversation's last message.
func (s *ChatService) CreateMessage(ctx context.Context, senderID string, in CreateMessageInput) (*models.Message, error) {
	if in.ConversationID == "" || senderID == "" || (strings.TrimSpace(in.Text) == "" && in.Images == "") {
		return nil, apperror.BadRequest("conversationId, sender, and text are required")
	}
	conv, err := s.memberConversation(ctx, senderID, in.ConversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{ConversationID: conv.ID, Sender: senderID, Text: in.Text, Image: in.Images}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}
		_, err := tx.Conversations().UpdateLastMessage(ctx, conv.ID, msg.Text, msg.ID)
		return err
	})
	if err != nil {
		return nil, apperror.Internal("Failed to create message", err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, actorID, conversationID string) ([]models.Message, error) {
	if _, err := s.memberConversation(ctx, actorID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages().ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, apperror.Internal("Failed to list messages", err)
	}
	return msgs, nil
}

func (s *ChatService) memberConversation(ctx context.Context, actorID, conversationID string) (*models.Conversation, error) {
	conv, err := s.store.Conversations().GetByID(ctx, conversationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Conversation not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load conversation", err)
	}
	if actorID != conv.UserID && actorID != conv.SellerID {
		return nil, apperror.Forbidden("You are not a member of this conversation")
	}
	return conv, nil
}
