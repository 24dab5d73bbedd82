package repositories

import (
	"context"
	"fmt"

	"dukan/internal/models"

	"gorm.io/gorm"
)

type GORMEventRepository struct {
	db *gorm.DB
}

func NewGORMEventRepository(db *gorm.DB) *GORMEventRepository {
	return &GORMEventRepository{db: db}
}

func (r *GORMEventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", translate(err))
	}
	return nil
}

func (r *GORMEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get event by ID %s: %w", id, translate(err))
	}
	return &event, nil
}

func (r *GORMEventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *GORMEventRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events of seller %s: %w", sellerID, err)
	}
	return events, nil
}

func (r *GORMEventRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMEventRepository) DeleteBySeller(ctx context.Context, sellerID string) error {
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Delete(&models.Event{}).Error; err != nil {
		return fmt.Errorf("failed to delete events of seller %s: %w", sellerID, err)
	}
	return nil
}

type GORMCouponRepository struct {
	db *gorm.DB
}

func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", translate(err))
	}
	return nil
}

func (r *GORMCouponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon by ID %s: %w", id, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) GetByName(ctx context.Context, name string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&coupon, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon %s: %w", name, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) Exists(ctx context.Context, sellerID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("seller_id = ? AND name = ?", sellerID, name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check coupon %s: %w", name, err)
	}
	return count > 0, nil
}

func (r *GORMCouponRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons of seller %s: %w", sellerID, err)
	}
	return coupons, nil
}

func (r *GORMCouponRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", id, err)
	}
	return nil
}

func (r *GORMCouponRepository) DeleteBySeller(ctx context.Context, sellerID string) error {
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Delete(&models.Coupon{}).Error; err != nil {
		return fmt.Errorf("failed to delete coupons of seller %s: %w", sellerID, err)
	}
	return nil
}
