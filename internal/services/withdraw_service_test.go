package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"dukan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateWithdrawRequest(t *testing.T) {
	store := newTestStore(t)
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, "seller@example.com", "Withdrawal Request Submitted", mock.Anything, mock.Anything).Return(nil)
	svc := NewWithdrawService(store, mailer, nil, nil, zap.NewNop())
	seller, shop := seedSeller(t, store, "seller@example.com", 1000)
	ctx := context.Background()

	withdraw, err := svc.CreateWithdrawRequest(ctx, seller.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawProcessing, withdraw.Status)
	assert.Equal(t, seller.ID, withdraw.SellerID)

	stored, err := store.Sellers().GetByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, stored.AvailableBalance, 0.001)
	require.Len(t, stored.Transactions, 1)
	assert.Equal(t, models.TxStatusProcessing, stored.Transactions[0].Status)

	_, err = svc.CreateWithdrawRequest(ctx, seller.ID, 600)
	requireCode(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "Insufficient balance. Available: ₹500.00")
	assert.InDelta(t, 500.0, balanceOf(t, store, shop.ID), 0.001)

	mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestCreateWithdrawRequest_Rejections(t *testing.T) {
	store := newTestStore(t)
	svc := NewWithdrawService(store, new(mockMailer), nil, nil, zap.NewNop())
	seller, _ := seedSeller(t, store, "seller@example.com", 1000)
	buyer := seedUser(t, store, "buyer@example.com", models.RoleUser, true)
	ctx := context.Background()

	for _, amount := range []float64{0, -10} {
		_, err := svc.CreateWithdrawRequest(ctx, seller.ID, amount)
		requireCode(t, err, http.StatusBadRequest)
	}

	_, err := svc.CreateWithdrawRequest(ctx, buyer.ID, 100)
	requireCode(t, err, http.StatusForbidden)

	_, err = svc.CreateWithdrawRequest(ctx, "missing", 100)
	requireCode(t, err, http.StatusNotFound)
}

func TestCreateWithdrawRequest_MailFailureKeepsRequest(t *testing.T) {
	store := newTestStore(t)
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc := NewWithdrawService(store, mailer, nil, nil, zap.NewNop())
	seller, shop := seedSeller(t, store, "seller@example.com", 300)

	withdraw, err := svc.CreateWithdrawRequest(context.Background(), seller.ID, 300)
	require.NoError(t, err)

	_, err = store.Withdraws().GetByID(context.Background(), withdraw.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, balanceOf(t, store, shop.ID), 0.001)
}

func TestApproveWithdrawRequest(t *testing.T) {
	store := newTestStore(t)
	mailer := new(mockMailer).acceptAll()
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := NewWithdrawService(store, mailer, publisher, nil, zap.NewNop())
	seller, shop := seedSeller(t, store, "seller@example.com", 1000)
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin, true)
	ctx := context.Background()

	withdraw, err := svc.CreateWithdrawRequest(ctx, seller.ID, 250)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawRequest(ctx, seller.ID, withdraw.ID, "")
	requireCode(t, err, http.StatusForbidden)

	approved, err := svc.ApproveWithdrawRequest(ctx, admin.ID, withdraw.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawSucceed, approved.Status)

	stored, err := store.Sellers().GetByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.InDelta(t, 750.0, stored.AvailableBalance, 0.001)
	var statuses []string
	for _, line := range stored.Transactions {
		statuses = append(statuses, line.Status)
	}
	assert.ElementsMatch(t, []string{models.TxStatusProcessing, models.WithdrawSucceed}, statuses)

	_, err = svc.ApproveWithdrawRequest(ctx, admin.ID, withdraw.ID, "")
	requireCode(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "Withdrawal request is already approved")

	_, err = svc.ApproveWithdrawRequest(ctx, admin.ID, "missing", "")
	requireCode(t, err, http.StatusNotFound)

	publisher.AssertCalled(t, "Publish", mock.Anything, EventWithdrawApproved, mock.Anything)
	mailer.AssertCalled(t, "Send", mock.Anything, "seller@example.com", "Payment Confirmation - Withdrawal Request Approved", mock.Anything, mock.Anything)
}

func TestAdminListWithdraws(t *testing.T) {
	store := newTestStore(t)
	svc := NewWithdrawService(store, new(mockMailer).acceptAll(), nil, nil, zap.NewNop())
	seller, shop := seedSeller(t, store, "seller@example.com", 1000)
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin, true)
	ctx := context.Background()

	_, err := svc.CreateWithdrawRequest(ctx, seller.ID, 100)
	require.NoError(t, err)
	_, err = svc.CreateWithdrawRequest(ctx, seller.ID, 200)
	require.NoError(t, err)

	_, err = svc.AdminListWithdraws(ctx, seller.ID)
	requireCode(t, err, http.StatusForbidden)

	views, err := svc.AdminListWithdraws(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		require.NotNil(t, v.ShopInfo)
		assert.Equal(t, shop.ID, v.ShopInfo.ID)
	}
}

func TestApproveWithdrawRequest_SellerByShopID(t *testing.T) {
	store := newTestStore(t)
	svc := NewWithdrawService(store, new(mockMailer).acceptAll(), nil, nil, zap.NewNop())
	seller, shop := seedSeller(t, store, "seller@example.com", 1000)
	_, otherShop := seedSeller(t, store, "other@example.com", 1000)
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin, true)
	ctx := context.Background()

	withdraw, err := svc.CreateWithdrawRequest(ctx, seller.ID, 100)
	require.NoError(t, err)

	_, err = svc.ApproveWithdrawRequest(ctx, admin.ID, withdraw.ID, otherShop.ID)
	requireCode(t, err, http.StatusBadRequest)
	other, err := store.Sellers().GetByID(ctx, otherShop.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Transactions)

	_, err = svc.ApproveWithdrawRequest(ctx, admin.ID, withdraw.ID, seller.ID)
	requireCode(t, err, http.StatusNotFound)

	approved, err := svc.ApproveWithdrawRequest(ctx, admin.ID, withdraw.ID, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawSucceed, approved.Status)

	stored, err := store.Sellers().GetByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Transactions, 2)
}

func TestCreateWithdrawRequest_AdminOwnedShop(t *testing.T) {
	store := newTestStore(t)
	svc := NewWithdrawService(store, new(mockMailer).acceptAll(), nil, nil, zap.NewNop())
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin, true)
	ctx := context.Background()

	_, err := svc.CreateWithdrawRequest(ctx, admin.ID, 100)
	requireCode(t, err, http.StatusNotFound)

	shop := &models.Seller{
		UserID:      admin.ID,
		ShopName:    "House Shop",
		PhoneNumber: "9999999999",
		ShopAddress: "1 Market Road",
		ZipCode:     "560001",
	}
	require.NoError(t, store.Sellers().Create(ctx, shop))
	require.NoError(t, store.Sellers().AdjustBalance(ctx, shop.ID, 400))

	withdraw, err := svc.CreateWithdrawRequest(ctx, admin.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, withdraw.SellerID)
	assert.InDelta(t, 250.0, balanceOf(t, store, shop.ID), 0.001)
}
