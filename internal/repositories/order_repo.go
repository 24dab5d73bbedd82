package repositories

import (
	"context"

	"dukan/internal/models"
)

// OrderRepository defines the interface for order data access. Listings are
// newest first.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	// SaveStatus persists only the mutable fields: status, payment info
	// and delivery time.
	SaveStatus(ctx context.Context, order *models.Order) error
	MarkReviewed(ctx context.Context, orderID, productID string) error
}

// WithdrawRepository defines data access for payout requests.
type WithdrawRepository interface {
	Create(ctx context.Context, withdraw *models.Withdraw) error
	GetByID(ctx context.Context, id string) (*models.Withdraw, error)
	List(ctx context.Context) ([]models.Withdraw, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Withdraw, error)
}
