package repositories

import (
	"context"

	"dukan/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteBySeller(ctx context.Context, sellerID string) error
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	GetByName(ctx context.Context, name string) (*models.Coupon, error)
	Exists(ctx context.Context, sellerID, name string) (bool, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Coupon, error)
	Delete(ctx context.Context, id string) error
	DeleteBySeller(ctx context.Context, sellerID string) error
}
