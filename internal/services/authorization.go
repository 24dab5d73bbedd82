package services

import (
	"context"
	"errors"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"
)

// Authorize is the single role check used by every service. It returns a
// Forbidden error carrying denied unless user holds one of roles. user must
// be the stored account, not token claims.
func Authorize(user *models.User, denied string, roles ...models.Role) error {
	if user != nil {
		for _, role := range roles {
			if user.Role == role {
				return nil
			}
		}
	}
	return apperror.Forbidden(denied)
}

// loadAccount fetches the acting account, reporting a missing one as NotFound
// with notFound as the client message.
func loadAccount(ctx context.Context, users repositories.UserRepository, id, notFound string) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound(notFound)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load account", err)
	}
	return user, nil
}
