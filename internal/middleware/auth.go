package middleware

import (
	"strings"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AccessCookie carries the access token for browser clients.
const AccessCookie = "token"

// AuthRequired accepts a Bearer access token from the Authorization header,
// falling back to the access token cookie, and stores the caller's id and
// role in the request locals.
func AuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if cookie := c.Cookies(AccessCookie); cookie != "" {
				authHeader = "Bearer " + cookie
			}
		}
		if authHeader == "" {
			return apperror.Unauthorized("Please login to access this resource")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
			return apperror.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		claims, err := tokens.ParseAccess(parts[1])
		if err != nil {
			return apperror.Wrap(fiber.StatusUnauthorized, "Invalid or expired token", err)
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(models.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return apperror.Forbidden("You are not allowed to access this resource")
	}
}

// UserID returns the caller id stored by AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
