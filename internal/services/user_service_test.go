package services

import (
	"context"
	"net/http"
	"testing"

	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_UpdateUserInfo(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, zap.NewNop())
	user := seedUser(t, store, "asha@example.com", models.RoleUser, true)
	seedUser(t, store, "ravi@example.com", models.RoleUser, true)
	ctx := context.Background()

	_, err := svc.UpdateUserInfo(ctx, user.ID, UpdateUserInfoInput{Name: "Asha", Email: "RAVI@example.com"})
	requireCode(t, err, http.StatusBadRequest)

	_, err = svc.UpdateUserInfo(ctx, user.ID, UpdateUserInfoInput{Name: "Asha", Email: "bad"})
	requireCode(t, err, http.StatusBadRequest)

	updated, err := svc.UpdateUserInfo(ctx, user.ID, UpdateUserInfoInput{Name: " Asha K ", Email: "Asha.K@example.com", PhoneNumber: "9000000000"})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "asha.k@example.com", updated.Email)

	stored, err := store.Users().GetByEmail(ctx, "asha.k@example.com")
	require.NoError(t, err)
	assert.Equal(t, "9000000000", stored.PhoneNumber)
}

func TestUserService_ChangePassword(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, zap.NewNop())
	user := seedUser(t, store, "asha@example.com", models.RoleUser, true)
	ctx := context.Background()

	requireCode(t, svc.ChangePassword(ctx, user.ID, "wrong-one", "newpass1", "newpass1"), http.StatusUnauthorized)
	requireCode(t, svc.ChangePassword(ctx, user.ID, testPassword, "newpass1", "newpass2"), http.StatusBadRequest)
	requireCode(t, svc.ChangePassword(ctx, user.ID, testPassword, testPassword, testPassword), http.StatusBadRequest)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, testPassword, "newpass1", "newpass1"))

	stored, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("newpass1"))
}

func TestUserService_Addresses(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, zap.NewNop())
	user := seedUser(t, store, "asha@example.com", models.RoleUser, true)
	ctx := context.Background()

	home := models.Address{Country: "IN", City: "Pune", Address1: "14 FC Road", Address2: "Flat 2", ZipCode: "411004", AddressType: "Home"}

	bad := home
	bad.AddressType = "Cottage"
	_, err := svc.UpdateAddress(ctx, user.ID, bad)
	requireCode(t, err, http.StatusBadRequest)

	_, err = svc.UpdateAddress(ctx, user.ID, home)
	require.NoError(t, err)
	home.City = "Mumbai"
	_, err = svc.UpdateAddress(ctx, user.ID, home)
	require.NoError(t, err)

	office := home
	office.AddressType = "Office"
	updated, err := svc.UpdateAddress(ctx, user.ID, office)
	require.NoError(t, err)
	require.Len(t, updated.Addresses, 2)
	assert.Equal(t, "Mumbai", updated.Addresses[0].City)

	updated, err = svc.DeleteAddress(ctx, user.ID, "Home")
	require.NoError(t, err)
	require.Len(t, updated.Addresses, 1)
	assert.Equal(t, "Office", updated.Addresses[0].AddressType)
}

func TestUserService_AdminDeleteUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, zap.NewNop())
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin, true)
	buyer := seedUser(t, store, "buyer@example.com", models.RoleUser, true)
	seller, shop := seedSeller(t, store, "seller@example.com", 0)
	seedProduct(t, store, seller.ID, 2, 0)
	ctx := context.Background()

	_, err := svc.AdminDeleteUser(ctx, buyer.ID, seller.ID)
	requireCode(t, err, http.StatusForbidden)
	_, err = svc.AdminDeleteUser(ctx, admin.ID, admin.ID)
	requireCode(t, err, http.StatusBadRequest)

	msg, err := svc.AdminDeleteUser(ctx, admin.ID, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seller and all associated data deleted successfully", msg)

	_, err = store.Sellers().GetByID(ctx, shop.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	products, err := store.Products().ListBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Empty(t, products)

	msg, err = svc.AdminDeleteUser(ctx, admin.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "User deleted successfully", msg)

	users, err := svc.AdminListUsers(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
