package repositories

import (
	"context"
	"fmt"

	"dukan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// Create adds a new product to the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a product with its reviews.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Reviews").First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// List retrieves all products, newest first.
func (r *GORMProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Reviews").Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *GORMProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Preload("Reviews").
		Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products of seller %s: %w", sellerID, err)
	}
	return products, nil
}

// Delete removes a product and its reviews.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews of product %s: %w", id, err)
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMProductRepository) DeleteBySeller(ctx context.Context, sellerID string) error {
	db := r.db.WithContext(ctx)
	sub := db.Model(&models.Product{}).Select("id").Where("seller_id = ?", sellerID)
	if err := db.Where("product_id IN (?)", sub).Delete(&models.Review{}).Error; err != nil {
		return fmt.Errorf("failed to delete reviews of seller %s: %w", sellerID, err)
	}
	if err := db.Where("seller_id = ?", sellerID).Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete products of seller %s: %w", sellerID, err)
	}
	return nil
}

func (r *GORMProductRepository) Restock(ctx context.Context, productID string, qty int) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":    gorm.Expr("stock + ?", qty),
			"sold_out": gorm.Expr("sold_out - ?", qty),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to restock product %s: %w", productID, err)
	}
	return nil
}

// SaveReview inserts the review or replaces the reviewer's previous one.
func (r *GORMProductRepository) SaveReview(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment"}),
	}).Create(review).Error
	if err != nil {
		return fmt.Errorf("failed to save review for product %s: %w", review.ProductID, err)
	}
	return nil
}

// RefreshRatings sets ratings to the mean of the product's reviews.
func (r *GORMProductRepository) RefreshRatings(ctx context.Context, productID string) error {
	db := r.db.WithContext(ctx)
	avg := db.Model(&models.Review{}).Select("COALESCE(AVG(rating), 0)").Where("product_id = ?", productID)
	if err := db.Model(&models.Product{}).Where("id = ?", productID).Update("ratings", avg).Error; err != nil {
		return fmt.Errorf("failed to refresh ratings of product %s: %w", productID, err)
	}
	return nil
}
