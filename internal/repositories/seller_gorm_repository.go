package repositories

import (
	"context"
	"fmt"

	"dukan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMSellerRepository struct {
	db *gorm.DB
}

func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{db: db}
}

func (r *GORMSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(seller).Error; err != nil {
		return fmt.Errorf("failed to create seller: %w", translate(err))
	}
	return nil
}

func (r *GORMSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMSellerRepository) GetByUserID(ctx context.Context, userID string) (*models.Seller, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *GORMSellerRepository) first(ctx context.Context, query string, arg string) (*models.Seller, error) {
	var seller models.Seller
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&seller, query, arg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get seller (%s %s): %w", query, arg, translate(err))
	}
	return &seller, nil
}

func (r *GORMSellerRepository) ShopNameTaken(ctx context.Context, shopName, exceptID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Seller{}).
		Where("shop_name_key = ? AND id <> ?", models.ShopNameKey(shopName), exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check shop name %s: %w", shopName, err)
	}
	return count > 0, nil
}

// Update writes the profile columns. The balance is only changed through
// AdjustBalance and Debit.
func (r *GORMSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	seller.ShopNameKey = models.ShopNameKey(seller.ShopName)
	err := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", seller.ID).
		Select("shop_name", "shop_name_key", "phone_number", "shop_address", "zip_code",
			"description", "shop_avatar", "withdraw_method").
		Updates(&models.Seller{
			ShopName:       seller.ShopName,
			ShopNameKey:    seller.ShopNameKey,
			PhoneNumber:    seller.PhoneNumber,
			ShopAddress:    seller.ShopAddress,
			ZipCode:        seller.ZipCode,
			Description:    seller.Description,
			ShopAvatar:     seller.ShopAvatar,
			WithdrawMethod: seller.WithdrawMethod,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update seller %s: %w", seller.ID, translate(err))
	}
	return nil
}

// List returns all sellers, newest first.
func (r *GORMSellerRepository) List(ctx context.Context) ([]models.Seller, error) {
	var sellers []models.Seller
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sellers).Error; err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	return sellers, nil
}

func (r *GORMSellerRepository) DeleteByUserID(ctx context.Context, userID string) error {
	db := r.db.WithContext(ctx)
	sub := db.Model(&models.Seller{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("seller_id IN (?)", sub).Delete(&models.SellerTransaction{}).Error; err != nil {
		return fmt.Errorf("failed to delete ledger of seller user %s: %w", userID, err)
	}
	if err := db.Where("user_id = ?", userID).Delete(&models.Seller{}).Error; err != nil {
		return fmt.Errorf("failed to delete seller user %s: %w", userID, err)
	}
	return nil
}

func (r *GORMSellerRepository) AdjustBalance(ctx context.Context, sellerID string, delta float64) error {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", sellerID).
		Update("available_balance", gorm.Expr("available_balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust balance of seller %s: %w", sellerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller %s: %w", sellerID, ErrNotFound)
	}
	return nil
}

func (r *GORMSellerRepository) Debit(ctx context.Context, sellerID string, amount float64) error {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).
		Where("id = ? AND available_balance >= ?", sellerID, amount).
		Update("available_balance", gorm.Expr("available_balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to debit seller %s: %w", sellerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller %s: %w", sellerID, ErrInsufficientBalance)
	}
	return nil
}

func (r *GORMSellerRepository) AppendTransaction(ctx context.Context, sellerID string, tx *models.SellerTransaction) error {
	tx.SellerID = sellerID
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to append transaction for seller %s: %w", sellerID, err)
	}
	return nil
}
