package repositories

import (
	"context"

	"dukan/internal/models"
)

// SellerRepository defines data access for shop profiles and their ledger.
type SellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) error
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	GetByUserID(ctx context.Context, userID string) (*models.Seller, error)
	ShopNameTaken(ctx context.Context, shopName, exceptID string) (bool, error)
	Update(ctx context.Context, seller *models.Seller) error
	List(ctx context.Context) ([]models.Seller, error)
	DeleteByUserID(ctx context.Context, userID string) error
	// AdjustBalance adds delta to the available balance in a single statement.
	AdjustBalance(ctx context.Context, sellerID string, delta float64) error
	// Debit subtracts amount only if the balance covers it, returning
	// ErrInsufficientBalance otherwise.
	Debit(ctx context.Context, sellerID string, amount float64) error
	AppendTransaction(ctx context.Context, sellerID string, tx *models.SellerTransaction) error
}
