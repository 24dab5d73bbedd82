package middleware

import (
	"dukan/internal/apperror"
	"dukan/internal/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebsocketUpgrade admits only websocket upgrade requests carrying a valid
// access token. Browsers cannot set headers on the handshake, so the token
// may also come from the "token" query parameter.
func WebsocketUpgrade(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); len(h) > len("Bearer ") && h[:len("Bearer ")] == "Bearer " {
				token = h[len("Bearer "):]
			}
		}
		if token == "" {
			return apperror.Unauthorized("Please login to access this resource")
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			return apperror.Wrap(fiber.StatusUnauthorized, "Invalid or expired token", err)
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}
