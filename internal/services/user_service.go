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

// UpdateUserInfoInput carries the editable profile fields.
type UpdateUserInfoInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	NickName    string `json:"nickName"`
}

// UserService covers the signed-in user's own profile and admin user
// management.
type UserService struct {
	store repositories.Store
	log   *zap.Logger
}

func NewUserService(store repositories.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return loadAccount(ctx, s.store.Users(), userID, "User not found")
}

func (s *UserService) UpdateUserInfo(ctx context.Context, userID string, in UpdateUserInfoInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, apperror.BadRequest("Name and email are required")
	}
	if !isEmail(in.Email) {
		return nil, apperror.BadRequest("Invalid email format")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	taken, err := s.store.Users().EmailTaken(ctx, in.Email, user.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to update profile", err)
	}
	if taken {
		return nil, apperror.BadRequest("Email already in use by another account")
	}

	user.Name = in.Name
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber
	user.NickName = in.NickName
	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.BadRequest("Email already in use by another account")
		}
		return nil, apperror.Internal("Failed to update profile", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return apperror.BadRequest("All fields are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperror.BadRequest("New password must be at least 6 characters long")
	}
	if newPassword != confirmPassword {
		return apperror.BadRequest("New password and confirm password do not match")
	}
	if newPassword == oldPassword {
		return apperror.BadRequest("New password must be different from old password")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperror.Unauthorized("Old password is incorrect")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return apperror.Internal("Failed to change password", err)
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return apperror.Internal("Failed to change password", err)
	}
	return nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return nil, apperror.BadRequest("User avatar URL is required")
	}
	if !isURL(avatarURL) {
		return nil, apperror.BadRequest("Invalid avatar URL")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	user.Avatar = avatarURL
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to update avatar", err)
	}
	return user, nil
}

// UpdateAddress adds addr, replacing any saved address of the same type.
func (s *UserService) UpdateAddress(ctx context.Context, userID string, addr models.Address) (*models.User, error) {
	if err := checkAddress(addr); err != nil {
		return nil, err
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range user.Addresses {
		if user.Addresses[i].AddressType == addr.AddressType {
			user.Addresses[i] = addr
			replaced = true
			break
		}
	}
	if !replaced {
		user.Addresses = append(user.Addresses, addr)
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to update address", err)
	}
	return user, nil
}

// DeleteAddress removes the saved address of addressType, if any.
func (s *UserService) DeleteAddress(ctx context.Context, userID, addressType string) (*models.User, error) {
	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}

	kept := user.Addresses[:0]
	for _, a := range user.Addresses {
		if a.AddressType != addressType {
			kept = append(kept, a)
		}
	}
	user.Addresses = kept

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperror.Internal("Failed to delete address", err)
	}
	return user, nil
}

func checkAddress(a models.Address) error {
	if a.Country == "" || a.City == "" || a.Address1 == "" || a.Address2 == "" || a.ZipCode == "" || a.AddressType == "" {
		return apperror.BadRequest("All address fields are required!")
	}
	if len(strings.TrimSpace(a.Address1)) < 5 {
		return apperror.BadRequest("Address 1 must be at least 5 characters long!")
	}
	if len(strings.TrimSpace(a.Address2)) < 3 {
		return apperror.BadRequest("Address 2 must be at least 3 characters long!")
	}
	if validate.Var(a.ZipCode, "numeric,min=4,max=10") != nil {
		return apperror.BadRequest("Invalid zip code! Must be 4-10 digits.")
	}
	if validate.Var(a.AddressType, "oneof=Default Home Office") != nil {
		return apperror.BadRequest("Invalid address type! Must be Default, Home, or Office.")
	}
	return nil
}

func (s *UserService) AdminListUsers(ctx context.Context, actorID string) ([]models.User, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "Only admin can get all users", models.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list users", err)
	}
	return users, nil
}

// AdminDeleteUser removes an account. Deleting a seller also removes their
// shop profile, products, events and coupons. It returns the message to
// show the admin.
func (s *UserService) AdminDeleteUser(ctx context.Context, actorID, targetID string) (string, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return "", err
	}
	if err := Authorize(actor, "Only admin can delete users", models.RoleAdmin); err != nil {
		return "", err
	}

	target, err := loadAccount(ctx, s.store.Users(), targetID, "User to delete not found")
	if err != nil {
		return "", err
	}
	if target.ID == actor.ID {
		return "", apperror.BadRequest("Admin cannot delete their own account")
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if target.Role == models.RoleSeller {
			if err := deleteShop(ctx, tx, target.ID); err != nil {
				return err
			}
		}
		return tx.Users().Delete(ctx, target.ID)
	})
	if err != nil {
		return "", apperror.Internal("Failed to delete user", err)
	}

	s.log.Info("user deleted by admin", zap.String("admin_id", actor.ID), zap.String("user_id", target.ID), zap.String("role", string(target.Role)))
	if target.Role == models.RoleSeller {
		return "Seller and all associated data deleted successfully", nil
	}
	return "User deleted successfully", nil
}

// deleteShop removes everything a seller account owns apart from the
// account itself.
func deleteShop(ctx context.Context, tx repositories.Store, sellerUserID string) error {
	if err := tx.Products().DeleteBySeller(ctx, sellerUserID); err != nil {
		return err
	}
	if err := tx.Events().DeleteBySeller(ctx, sellerUserID); err != nil {
		return err
	}
	if err := tx.Coupons().DeleteBySeller(ctx, sellerUserID); err != nil {
		return err
	}
	return tx.Sellers().DeleteByUserID(ctx, sellerUserID)
}
