package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"go.uber.org/zap"
)

// TagList accepts either a JSON array of tags or one comma separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = cleanTags(strings.Split(joined, ","))
	return nil
}

func cleanTags(in []string) TagList {
	out := make(TagList, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// CreateProductInput is a new catalog listing.
type CreateProductInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          TagList  `json:"tags"`
	OriginalPrice float64  `json:"originalPrice"`
	DiscountPrice float64  `json:"discountPrice"`
	Stock         int      `json:"stock"`
	Images        []string `json:"images"`
}

// ReviewInput rates a product bought in OrderID.
type ReviewInput struct {
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	store repositories.Store
	log   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(store repositories.Store, log *zap.Logger) *ProductService {
	return &ProductService{store: store, log: log}
}

// CreateProduct lists a product in the caller's shop.
func (s *ProductService) CreateProduct(ctx context.Context, userID string, in CreateProductInput) (*models.Product, error) {
	seller, err := requireShop(ctx, s.store, userID, "Only sellers can create products",
		"Seller profile not found. Please create a seller profile first")
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SellerID:      seller.ID,
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Category:      in.Category,
		Tags:          in.Tags,
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        in.Images,
	}
	if err := validate.Struct(product); err != nil {
		return nil, apperror.Wrap(http.StatusBadRequest, "Please provide valid product details", err)
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, apperror.Internal("Failed to create product", err)
	}

	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("seller_id", seller.ID))
	return product, nil
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list products", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product with its reviews.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.store.Products().GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to get product", err)
	}
	return product, nil
}

// GetShopProducts lists the products of the seller account sellerID.
func (s *ProductService) GetShopProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	if err := requireSellerAccount(ctx, s.store, sellerID); err != nil {
		return nil, err
	}
	products, err := s.store.Products().ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Internal("Failed to list shop products", err)
	}
	return products, nil
}

// DeleteProduct deletes a product owned by the caller.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, productID string) error {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.SellerID != userID {
		return apperror.Forbidden("You are not authorized to delete this product")
	}
	if err := s.store.Products().Delete(ctx, product.ID); err != nil {
		return apperror.Internal("Failed to delete product", err)
	}
	return nil
}

func (s *ProductService) AdminListProducts(ctx context.Context, actorID string) ([]models.Product, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "Only admin can get products", models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.GetAllProducts(ctx)
}

// CreateReview records the caller's rating for a product from one of their
// orders, replacing any earlier review, and refreshes the product rating.
func (s *ProductService) CreateReview(ctx context.Context, userID string, in ReviewInput) (*models.Product, error) {
	if in.ProductID == "" || in.OrderID == "" {
		return nil, apperror.BadRequest("Product and order are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.BadRequest("Rating must be between 1 and 5")
	}

	if _, err := s.GetProductByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	order, err := s.store.Orders().GetByID(ctx, in.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to add review", err)
	}
	if order.UserID != userID {
		return nil, apperror.Forbidden("You can only review products from your own orders")
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		review := &models.Review{ProductID: in.ProductID, UserID: userID, Rating: in.Rating, Comment: in.Comment}
		if err := tx.Products().SaveReview(ctx, review); err != nil {
			return err
		}
		if err := tx.Products().RefreshRatings(ctx, in.ProductID); err != nil {
			return err
		}
		return tx.Orders().MarkReviewed(ctx, order.ID, in.ProductID)
	})
	if err != nil {
		return nil, apperror.Internal("Failed to add review", err)
	}
	return s.GetProductByID(ctx, in.ProductID)
}

// requireShop loads a seller account together with its shop profile.
func requireShop(ctx context.Context, store repositories.Store, userID, denied, noProfile string) (*models.User, error) {
	user, err := loadAccount(ctx, store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, denied, models.RoleSeller); err != nil {
		return nil, err
	}
	_, err = store.Sellers().GetByUserID(ctx, user.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound(noProfile)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load seller profile", err)
	}
	return user, nil
}

// requireSellerAccount checks that sellerID names an account with role seller.
func requireSellerAccount(ctx context.Context, store repositories.Store, sellerID string) error {
	user, err := loadAccount(ctx, store.Users(), sellerID, "Seller not found")
	if err != nil {
		return err
	}
	if user.Role != models.RoleSeller {
		return apperror.BadRequest("User is not a seller")
	}
	return nil
}
