package services

import (
	"context"
	"errors"
	"strings"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"go.uber.org/zap"
)

// CreateCouponInput is a percentage discount code.
type CreateCouponInput struct {
	Name            string   `json:"name"`
	Value           int      `json:"value"`
	MinAmount       float64  `json:"minAmount"`
	MaxAmount       *float64 `json:"maxAmount"`
	SelectedProduct string   `json:"selectedProduct"`
}

type CouponService struct {
	store repositories.Store
	log   *zap.Logger
}

func NewCouponService(store repositories.Store, log *zap.Logger) *CouponService {
	return &CouponService{store: store, log: log}
}

func couponCode(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (s *CouponService) CreateCoupon(ctx context.Context, userID string, in CreateCouponInput) (*models.Coupon, error) {
	name := couponCode(in.Name)
	if name == "" || in.Value == 0 {
		return nil, apperror.BadRequest("Coupon name and value are required")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Only sellers can create coupon codes", models.RoleSeller); err != nil {
		return nil, err
	}
	if in.Value < 1 || in.Value > 100 {
		return nil, apperror.BadRequest("Discount value must be between 1 and 100 percent")
	}
	if in.MaxAmount != nil && in.MinAmount > *in.MaxAmount {
		return nil, apperror.BadRequest("Minimum amount cannot be greater than maximum amount")
	}

	exists, err := s.store.Coupons().Exists(ctx, user.ID, name)
	if err != nil {
		return nil, apperror.Internal("Failed to create coupon code", err)
	}
	if exists {
		return nil, apperror.BadRequest("Coupon code with this name already exists")
	}

	coupon := &models.Coupon{
		Name:            name,
		Value:           in.Value,
		MinAmount:       in.MinAmount,
		MaxAmount:       in.MaxAmount,
		SellerID:        user.ID,
		SelectedProduct: in.SelectedProduct,
	}
	if err := s.store.Coupons().Create(ctx, coupon); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.BadRequest("Coupon code with this name already exists")
		}
		return nil, apperror.Internal("Failed to create coupon code", err)
	}
	return coupon, nil
}

// GetSellerCoupons lists a seller's coupons, newest first.
func (s *CouponService) GetSellerCoupons(ctx context.Context, sellerID string) ([]models.Coupon, error) {
	coupons, err := s.store.Coupons().ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Internal("Failed to list coupon codes", err)
	}
	return coupons, nil
}

// GetCouponValue resolves a code typed in at checkout.
func (s *CouponService) GetCouponValue(ctx context.Context, name string) (*models.Coupon, error) {
	coupon, err := s.store.Coupons().GetByName(ctx, couponCode(name))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Invalid coupon code")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to get coupon code", err)
	}
	return coupon, nil
}

func (s *CouponService) DeleteCoupon(ctx context.Context, userID, couponID string) error {
	coupon, err := s.store.Coupons().GetByID(ctx, couponID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("Coupon code not found")
	}
	if err != nil {
		return apperror.Internal("Failed to delete coupon code", err)
	}
	if coupon.SellerID != userID {
		return apperror.Forbidden("You are not authorized to delete this coupon code")
	}
	if err := s.store.Coupons().Delete(ctx, coupon.ID); err != nil {
		return apperror.Internal("Failed to delete coupon code", err)
	}
	return nil
}
