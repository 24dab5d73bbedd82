package handlers

import (
	"context"

	"dukan/internal/middleware"
	"dukan/internal/realtime"
	"dukan/internal/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebsocketHandler upgrades authenticated clients onto the realtime hub.
type WebsocketHandler struct {
	hub    *realtime.Hub
	tokens *services.TokenService
	ctx    context.Context
}

// NewWebsocketHandler binds connections to ctx, which should end when the
// server shuts down.
func NewWebsocketHandler(ctx context.Context, hub *realtime.Hub, tokens *services.TokenService) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, tokens: tokens, ctx: ctx}
}

func (h *WebsocketHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/ws", middleware.WebsocketUpgrade(h.tokens), websocket.New(h.serve))
}

func (h *WebsocketHandler) serve(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(string)
	realtime.NewClient(h.hub, conn, userID).Serve(h.ctx)
}
