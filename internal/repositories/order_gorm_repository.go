package repositories

import (
	"context"
	"fmt"

	"dukan/internal/models"

	"gorm.io/gorm"
)

type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order together with its cart lines.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.withCart(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, translate(err))
	}
	return &order, nil
}

func (r *GORMOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withCart(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withCart(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// ListBySeller returns orders with at least one cart line from sellerID.
func (r *GORMOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	var orders []models.Order
	lines := r.db.WithContext(ctx).Model(&models.CartItem{}).Select("order_id").Where("seller_id = ?", sellerID)
	err := r.withCart(ctx).Where("id IN (?)", lines).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of seller %s: %w", sellerID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) SaveStatus(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
		Select("status", "payment_info", "delivered_at").
		Updates(&models.Order{
			Status:      order.Status,
			PaymentInfo: order.PaymentInfo,
			DeliveredAt: order.DeliveredAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) MarkReviewed(ctx context.Context, orderID, productID string) error {
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Update("is_reviewed", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark order %s reviewed: %w", orderID, err)
	}
	return nil
}

func (r *GORMOrderRepository) withCart(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Cart", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

type GORMWithdrawRepository struct {
	db *gorm.DB
}

func NewGORMWithdrawRepository(db *gorm.DB) *GORMWithdrawRepository {
	return &GORMWithdrawRepository{db: db}
}

func (r *GORMWithdrawRepository) Create(ctx context.Context, withdraw *models.Withdraw) error {
	if err := r.db.WithContext(ctx).Create(withdraw).Error; err != nil {
		return fmt.Errorf("failed to create withdraw: %w", err)
	}
	return nil
}

func (r *GORMWithdrawRepository) GetByID(ctx context.Context, id string) (*models.Withdraw, error) {
	var withdraw models.Withdraw
	if err := r.db.WithContext(ctx).First(&withdraw, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get withdraw by ID %s: %w", id, translate(err))
	}
	return &withdraw, nil
}

func (r *GORMWithdrawRepository) List(ctx context.Context) ([]models.Withdraw, error) {
	var withdraws []models.Withdraw
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&withdraws).Error; err != nil {
		return nil, fmt.Errorf("failed to list withdraws: %w", err)
	}
	return withdraws, nil
}

func (r *GORMWithdrawRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Withdraw, error) {
	res := r.db.WithContext(ctx).Model(&models.Withdraw{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update withdraw %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("withdraw %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}
