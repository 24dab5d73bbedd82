package services

import (
	"context"
	"errors"
	"strings"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateSellerInput is the shop a user opens when becoming a seller.
type CreateSellerInput struct {
	ShopName    string `json:"shopName"`
	PhoneNumber string `json:"phoneNumber"`
	ShopAddress string `json:"shopAddress"`
	ZipCode     string `json:"zipCode"`
	Description string `json:"description"`
	ShopAvatar  string `json:"shopAvatar"`
}

// UpdateShopInput holds optional profile changes; empty fields are kept.
type UpdateShopInput struct {
	ShopName    string `json:"shopName"`
	PhoneNumber string `json:"phoneNumber"`
	ShopAddress string `json:"shopAddress"`
	ZipCode     string `json:"zipCode"`
	Description string `json:"description"`
}

// ShopInfo is the public view of a shop.
type ShopInfo struct {
	Seller        *models.Seller `json:"seller"`
	TotalProducts int            `json:"totalProducts"`
	AverageRating float64        `json:"averageRating"`
}

type SellerService struct {
	store repositories.Store
	log   *zap.Logger
}

func NewSellerService(store repositories.Store, log *zap.Logger) *SellerService {
	return &SellerService{store: store, log: log}
}

// CreateSeller opens a shop for userID and promotes the account to seller
// in the same transaction.
func (s *SellerService) CreateSeller(ctx context.Context, userID string, in CreateSellerInput) (*models.Seller, error) {
	in.ShopName = strings.TrimSpace(in.ShopName)
	if in.ShopName == "" || in.PhoneNumber == "" || in.ShopAddress == "" || in.ZipCode == "" {
		return nil, apperror.BadRequest("Please provide all required fields")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}

	_, err = s.store.Sellers().GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		return nil, apperror.BadRequest("Seller profile already exists for this user")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperror.Internal("Failed to create seller profile", err)
	}

	taken, err := s.store.Sellers().ShopNameTaken(ctx, in.ShopName, "")
	if err != nil {
		return nil, apperror.Internal("Failed to create seller profile", err)
	}
	if taken {
		return nil, apperror.BadRequest("Shop name already exists. Please choose another name")
	}

	seller := &models.Seller{
		UserID:      user.ID,
		ShopName:    in.ShopName,
		PhoneNumber: in.PhoneNumber,
		ShopAddress: in.ShopAddress,
		ZipCode:     in.ZipCode,
		Description: in.Description,
		ShopAvatar:  in.ShopAvatar,
	}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Sellers().Create(ctx, seller); err != nil {
			return err
		}
		if user.Role == models.RoleUser {
			return tx.Users().UpdateRole(ctx, user.ID, models.RoleSeller)
		}
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, apperror.BadRequest("Seller profile already exists for this user")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to create seller profile", err)
	}

	s.log.Info("seller profile created", zap.String("user_id", user.ID), zap.String("seller_id", seller.ID))
	return seller, nil
}

// Profile returns the caller's own shop, ledger included.
func (s *SellerService) Profile(ctx context.Context, userID string) (*models.Seller, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Access denied. You are not registered as a seller", models.RoleSeller); err != nil {
		return nil, err
	}
	return s.ownProfile(ctx, user.ID, "Seller profile not found. Please create your seller profile first")
}

// ShopInfo returns the public shop of the seller account userID.
func (s *SellerService) ShopInfo(ctx context.Context, userID string) (*ShopInfo, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "Seller not found")
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleSeller {
		return nil, apperror.BadRequest("This user is not a seller")
	}
	seller, err := s.ownProfile(ctx, user.ID, "Seller not found")
	if err != nil {
		return nil, err
	}

	products, err := s.store.Products().ListBySeller(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load shop info", err)
	}
	return &ShopInfo{
		Seller:        seller,
		TotalProducts: len(products),
		AverageRating: averageRating(products),
	}, nil
}

// averageRating is the mean rating of the rated products, to one decimal.
func averageRating(products []models.Product) float64 {
	sum, rated := decimal.Zero, 0
	for _, p := range products {
		if p.Ratings > 0 {
			sum = sum.Add(decimal.NewFromFloat(p.Ratings))
			rated++
		}
	}
	if rated == 0 {
		return 0
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(rated))).Round(1).Float64()
	return avg
}

func (s *SellerService) UpdateShopProfile(ctx context.Context, userID string, in UpdateShopInput) (*models.Seller, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Access denied. You are not registered as a seller", models.RoleSeller); err != nil {
		return nil, err
	}
	seller, err := s.ownProfile(ctx, user.ID, "Seller profile not found")
	if err != nil {
		return nil, err
	}

	if in.ZipCode != "" && validate.Var(in.ZipCode, "numeric,len=6") != nil {
		return nil, apperror.BadRequest("Please provide a valid 6-digit zip code")
	}
	if name := strings.TrimSpace(in.ShopName); name != "" && name != seller.ShopName {
		taken, err := s.store.Sellers().ShopNameTaken(ctx, name, seller.ID)
		if err != nil {
			return nil, apperror.Internal("Failed to update shop profile", err)
		}
		if taken {
			return nil, apperror.BadRequest("Shop name already exists. Please choose another name")
		}
		seller.ShopName = name
	}
	if in.PhoneNumber != "" {
		seller.PhoneNumber = in.PhoneNumber
	}
	if in.ShopAddress != "" {
		seller.ShopAddress = in.ShopAddress
	}
	if in.ZipCode != "" {
		seller.ZipCode = in.ZipCode
	}
	if in.Description != "" {
		seller.Description = in.Description
	}

	if err := s.store.Sellers().Update(ctx, seller); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.BadRequest("Shop name already exists. Please choose another name")
		}
		return nil, apperror.Internal("Failed to update shop profile", err)
	}
	return seller, nil
}

func (s *SellerService) UpdateShopAvatar(ctx context.Context, userID, avatarURL string) (*models.Seller, error) {
	if strings.TrimSpace(avatarURL) == "" {
		return nil, apperror.BadRequest("Shop avatar URL is required")
	}
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Access denied. You are not registered as a seller", models.RoleSeller); err != nil {
		return nil, err
	}
	seller, err := s.ownProfile(ctx, user.ID, "Seller profile not found")
	if err != nil {
		return nil, err
	}

	seller.ShopAvatar = strings.TrimSpace(avatarURL)
	if err := s.store.Sellers().Update(ctx, seller); err != nil {
		return nil, apperror.Internal("Failed to update shop avatar", err)
	}
	return seller, nil
}

func (s *SellerService) UpdatePaymentMethod(ctx context.Context, userID string, method *models.WithdrawMethod) (*models.Seller, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Only sellers can update payment methods", models.RoleSeller); err != nil {
		return nil, err
	}
	if method == nil {
		return nil, apperror.BadRequest("Please provide valid payment method details")
	}
	if err := validate.Struct(method); err != nil {
		return nil, apperror.BadRequest("All bank details are required")
	}

	seller, err := s.ownProfile(ctx, user.ID, "Seller profile not found")
	if err != nil {
		return nil, err
	}
	seller.WithdrawMethod = method
	if err := s.store.Sellers().Update(ctx, seller); err != nil {
		return nil, apperror.Internal("Failed to update payment method", err)
	}
	return seller, nil
}

func (s *SellerService) DeleteWithdrawMethod(ctx context.Context, userID string) (*models.Seller, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Only sellers can update payment methods", models.RoleSeller); err != nil {
		return nil, err
	}
	seller, err := s.ownProfile(ctx, user.ID, "Seller profile not found")
	if err != nil {
		return nil, err
	}
	if seller.WithdrawMethod == nil {
		return nil, apperror.NotFound("No payment method found to delete")
	}

	seller.WithdrawMethod = nil
	if err := s.store.Sellers().Update(ctx, seller); err != nil {
		return nil, apperror.Internal("Failed to delete payment method", err)
	}
	return seller, nil
}

func (s *SellerService) AdminListSellers(ctx context.Context, actorID string) ([]models.Seller, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "Only admin can get all sellers", models.RoleAdmin); err != nil {
		return nil, err
	}

	sellers, err := s.store.Sellers().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list sellers", err)
	}
	return sellers, nil
}

// DeleteSeller closes the shop with profile id sellerID along with its
// catalog and demotes the owner back to user. Admins may close any shop.
func (s *SellerService) DeleteSeller(ctx context.Context, actorID, sellerID string) error {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return err
	}
	seller, err := s.store.Sellers().GetByID(ctx, sellerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("Seller not found")
	}
	if err != nil {
		return apperror.Internal("Failed to delete seller", err)
	}
	if actor.Role != models.RoleAdmin && seller.UserID != actor.ID {
		return apperror.Forbidden("You are not authorized to delete this seller")
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := deleteShop(ctx, tx, seller.UserID); err != nil {
			return err
		}
		owner, err := tx.Users().GetByID(ctx, seller.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if owner.Role != models.RoleSeller {
			return nil
		}
		return tx.Users().UpdateRole(ctx, owner.ID, models.RoleUser)
	})
	if err != nil {
		return apperror.Internal("Failed to delete seller", err)
	}

	s.log.Info("seller deleted", zap.String("actor_id", actor.ID), zap.String("seller_id", seller.ID))
	return nil
}

func (s *SellerService) ownProfile(ctx context.Context, userID, notFound string) (*models.Seller, error) {
	seller, err := s.store.Sellers().GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound(notFound)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load seller profile", err)
	}
	return seller, nil
}
