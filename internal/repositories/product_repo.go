package repositories

import (
	"context"

	"dukan/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteBySeller(ctx context.Context, sellerID string) error
	// Restock adds qty to stock and removes it from soldOut. Unknown
	// products are skipped.
	Restock(ctx context.Context, productID string, qty int) error
	SaveReview(ctx context.Context, review *models.Review) error
	RefreshRatings(ctx context.Context, productID string) error
}
