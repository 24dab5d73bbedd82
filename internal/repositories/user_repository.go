package repositories

import (
	"context"
	"time"

	"dukan/internal/models"
)

// UserRepository defines the interface for account data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	// UpsertTrustedDevice inserts the device or, when the deviceId is already
	// known for the user, refreshes and reactivates it.
	UpsertTrustedDevice(ctx context.Context, userID string, device *models.TrustedDevice) error
	TouchTrustedDevice(ctx context.Context, userID, deviceID string, at time.Time) error
}
