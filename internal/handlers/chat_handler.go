package handlers

import (
	"dukan/internal/apperror"
	"dukan/internal/middleware"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves the stored side of chat: conversations and messages.
type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	conv := router.Group("/conversation", protect)
	conv.Post("/create-new-conversation", h.HandleCreateConversation)
	conv.Get("/get-all-conversation-user/:id", h.HandleListConversations)
	conv.Get("/get-all-conversation-seller/:id", h.HandleListConversations)
	conv.Put("/update-last-message/:id", h.HandleUpdateLastMessage)

	msg := router.Group("/message", protect)
	msg.Post("/create-new-message", h.HandleCreateMessage)
	msg.Get("/get-all-messages/:id", h.HandleListMessages)
}

func (h *ChatHandler) HandleCreateConversation(c *fiber.Ctx) error {
	var req services.CreateConversationInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	conv, created, err := h.service.CreateConversation(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"success": true, "conversation": conv})
}

// HandleListConversations serves both the buyer and the shop inbox; callers
// may only list their own.
func (h *ChatHandler) HandleListConversations(c *fiber.Ctx) error {
	caller := middleware.UserID(c)
	if id := c.Params("id"); id != caller {
		return apperror.Forbidden("You can only view your own conversations")
	}

	convs, err := h.service.ListConversations(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "conversations": convs})
}

func (h *ChatHandler) HandleUpdateLastMessage(c *fiber.Ctx) error {
	var req struct {
		LastMessage   string `json:"lastMessage"`
		LastMessageID string `json:"lastMessageId"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	conv, err := h.service.UpdateLastMessage(c.UserContext(), middleware.UserID(c), c.Params("id"), req.LastMessage, req.LastMessageID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "conversation": conv})
}

func (h *ChatHandler) HandleCreateMessage(c *fiber.Ctx) error {
	var req services.CreateMessageInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.service.CreateMessage(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}

func (h *ChatHandler) HandleListMessages(c *fiber.Ctx) error {
	msgs, err := h.service.ListMessages(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}
