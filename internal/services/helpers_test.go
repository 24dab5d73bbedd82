package services

import (
	"context"
	"testing"
	"time"

	"dukan/internal/apperror"
	"dukan/internal/config"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "secret123"

// newTestStore opens a private in-memory sqlite database per test.
func newTestStore(t *testing.T) *repositories.GORMStore {
	t.Helper()
	db, err := repositories.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return repositories.NewGORMStore(db)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	return m.Called(ctx, to, subject, bodyHTML, bodyText).Error(0)
}

// acceptAll makes every Send succeed.
func (m *mockMailer) acceptAll() *mockMailer {
	m.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

func testTokens() *TokenService {
	return NewTokenService(config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func seedUser(t *testing.T, store repositories.Store, email string, role models.Role, verified bool) *models.User {
	t.Helper()
	user := &models.User{Name: "Test " + string(role), Email: email, Role: role, IsVerified: verified}
	require.NoError(t, user.SetPassword(testPassword))
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

// seedSeller creates a seller account with a shop holding balance.
func seedSeller(t *testing.T, store repositories.Store, email string, balance float64) (*models.User, *models.Seller) {
	t.Helper()
	ctx := context.Background()
	user := seedUser(t, store, email, models.RoleSeller, true)
	shop := &models.Seller{
		UserID:      user.ID,
		ShopName:    "Shop " + email,
		PhoneNumber: "9999999999",
		ShopAddress: "1 Market Road",
		ZipCode:     "560001",
	}
	require.NoError(t, store.Sellers().Create(ctx, shop))
	if balance != 0 {
		require.NoError(t, store.Sellers().AdjustBalance(ctx, shop.ID, balance))
	}
	return user, shop
}

func seedProduct(t *testing.T, store repositories.Store, sellerID string, stock, soldOut int) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID:      sellerID,
		Name:          "Kurta",
		Description:   "Cotton kurta",
		Category:      "Clothing",
		DiscountPrice: 499,
		Stock:         stock,
		SoldOut:       soldOut,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func balanceOf(t *testing.T, store repositories.Store, sellerID string) float64 {
	t.Helper()
	shop, err := store.Sellers().GetByID(context.Background(), sellerID)
	require.NoError(t, err)
	return shop.AvailableBalance
}

// requireCode asserts err is an apperror carrying code.
func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperror.Code(err), err.Error())
}
