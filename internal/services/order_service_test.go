package services

import (
	"context"
	"net/http"
	"testing"

	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	svc       *OrderService
	store     *repositories.GORMStore
	publisher *mockPublisher
	buyer     *models.User
	seller    *models.User
	shop      *models.Seller
	product   *models.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	store := newTestStore(t)
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f := &orderFixture{
		svc:       NewOrderService(store, publisher, nil, zap.NewNop()),
		store:     store,
		publisher: publisher,
		buyer:     seedUser(t, store, "buyer@example.com", models.RoleUser, true),
	}
	f.seller, f.shop = seedSeller(t, store, "seller@example.com", 1000)
	f.product = seedProduct(t, store, f.seller.ID, 10, 5)
	return f
}

func (f *orderFixture) checkout(qty int, total float64) CreateOrderInput {
	return CreateOrderInput{
		Cart: []models.CartItem{{
			ProductID: f.product.ID,
			SellerID:  f.seller.ID,
			Name:      f.product.Name,
			Qty:       qty,
			Price:     f.product.DiscountPrice,
		}},
		ShippingAddress: &models.ShippingAddress{Address1: "12 MG Road", City: "Bengaluru", Country: "IN", ZipCode: "560001"},
		TotalPrice:      total,
		PaymentInfo:     &models.PaymentInfo{Type: models.PaymentCOD},
	}
}

func (f *orderFixture) placeOrder(t *testing.T, qty int, total float64) *models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), f.buyer.ID, f.checkout(qty, total))
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	order := f.placeOrder(t, 2, 998)

	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, f.buyer.ID, order.UserID)
	assert.False(t, order.PaidAt.IsZero())
	require.Len(t, order.Cart, 1)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, EventOrderCreated, mock.MatchedBy(func(e OrderEvent) bool {
		return e.OrderID == order.ID && e.UserID == f.buyer.ID
	}))

	stored, err := f.store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Cart[0].Qty)
	assert.Equal(t, "560001", stored.ShippingAddress.ZipCode)

	// Placing an order leaves stock alone.
	product, err := f.store.Products().GetByID(context.Background(), f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name   string
		mutate func(in *CreateOrderInput)
	}{
		{"empty cart", func(in *CreateOrderInput) { in.Cart = nil }},
		{"no address", func(in *CreateOrderInput) { in.ShippingAddress = nil }},
		{"zero total", func(in *CreateOrderInput) { in.TotalPrice = 0 }},
		{"no payment", func(in *CreateOrderInput) { in.PaymentInfo = nil }},
		{"zero quantity", func(in *CreateOrderInput) { in.Cart[0].Qty = 0 }},
		{"line without seller", func(in *CreateOrderInput) { in.Cart[0].SellerID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.checkout(1, 499)
			tt.mutate(&in)
			_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID, in)
			requireCode(t, err, http.StatusBadRequest)
		})
	}
}

func TestUpdateOrderStatus_DeliveredCreditsSellerOnce(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 2, 1000)

	updated, err := f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)
	assert.Equal(t, models.PaymentSucceeded, updated.PaymentInfo.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.InDelta(t, 1900.0, balanceOf(t, f.store, f.shop.ID), 0.001)

	_, err = f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.InDelta(t, 1900.0, balanceOf(t, f.store, f.shop.ID), 0.001)

	stored, err := f.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSucceeded, stored.PaymentInfo.Status)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestUpdateOrderStatus_RedeliveryDoesNotCreditAgain(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 2, 1000)

	first, err := f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	deliveredAt := *first.DeliveredAt

	_, err = f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderShipping)
	require.NoError(t, err)
	again, err := f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)

	assert.Equal(t, models.OrderDelivered, again.Status)
	assert.True(t, deliveredAt.Equal(*again.DeliveredAt))
	assert.InDelta(t, 1900.0, balanceOf(t, f.store, f.shop.ID), 0.001)
}

func TestUpdateOrderStatus_DeliveredWithoutShopProfile(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	shopless := seedUser(t, f.store, "shopless@example.com", models.RoleSeller, true)

	in := f.checkout(1, 499)
	in.Cart[0].SellerID = shopless.ID
	order, err := f.svc.CreateOrder(ctx, f.buyer.ID, in)
	require.NoError(t, err)

	updated, err := f.svc.UpdateOrderStatus(ctx, shopless.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)

	stored, err := f.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, stored.Status)
	assert.InDelta(t, 1000.0, balanceOf(t, f.store, f.shop.ID), 0.001)
}

func TestUpdateOrderStatus_TransferRestocks(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.placeOrder(t, 2, 998)
	second := f.placeOrder(t, 3, 1497)

	for _, o := range []*models.Order{first, second} {
		_, err := f.svc.UpdateOrderStatus(ctx, f.seller.ID, o.ID, models.OrderTransferred)
		require.NoError(t, err)
	}

	product, err := f.store.Products().GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, product.Stock)
	assert.Equal(t, 0, product.SoldOut)
	assert.InDelta(t, 1000.0, balanceOf(t, f.store, f.shop.ID), 0.001)
}

func TestUpdateOrderStatus_Rejections(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 1, 499)
	stranger, _ := seedSeller(t, f.store, "other@example.com", 0)

	_, err := f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, "Lost")
	requireCode(t, err, http.StatusBadRequest)

	_, err = f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderRefundSuccess)
	requireCode(t, err, http.StatusBadRequest)

	_, err = f.svc.UpdateOrderStatus(ctx, stranger.ID, order.ID, models.OrderShipping)
	requireCode(t, err, http.StatusForbidden)

	_, err = f.svc.UpdateOrderStatus(ctx, f.seller.ID, "missing", models.OrderShipping)
	requireCode(t, err, http.StatusNotFound)
}

func TestRefundFlow(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 2, 100)

	_, err := f.svc.RequestRefund(ctx, f.buyer.ID, order.ID)
	requireCode(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "You can only request refund for delivered orders")

	_, err = f.svc.UpdateOrderStatus(ctx, f.seller.ID, order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.InDelta(t, 1090.0, balanceOf(t, f.store, f.shop.ID), 0.001)

	_, err = f.svc.RequestRefund(ctx, f.seller.ID, order.ID)
	requireCode(t, err, http.StatusForbidden)

	_, err = f.svc.ApproveRefund(ctx, f.seller.ID, order.ID)
	requireCode(t, err, http.StatusBadRequest)

	pending, err := f.svc.RequestRefund(ctx, f.buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessingRefund, pending.Status)

	refunded, err := f.svc.ApproveRefund(ctx, f.seller.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRefundSuccess, refunded.Status)

	shop, err := f.store.Sellers().GetByID(ctx, f.shop.ID)
	require.NoError(t, err)
	assert.InDelta(t, 990.0, shop.AvailableBalance, 0.001)
	require.Len(t, shop.Transactions, 1)
	assert.Equal(t, models.TxStatusRefunded, shop.Transactions[0].Status)
	assert.InDelta(t, 100.0, shop.Transactions[0].Amount, 0.001)

	product, err := f.store.Products().GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, product.Stock)

	_, err = f.svc.ApproveRefund(ctx, f.seller.ID, order.ID)
	requireCode(t, err, http.StatusBadRequest)
	assert.InDelta(t, 990.0, balanceOf(t, f.store, f.shop.ID), 0.001)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, EventOrderRefunded, mock.Anything)
}

func TestOrderReads_Authorization(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.placeOrder(t, 1, 499)
	other := seedUser(t, f.store, "other@example.com", models.RoleUser, true)
	admin := seedUser(t, f.store, "admin@example.com", models.RoleAdmin, true)

	for _, actor := range []string{f.buyer.ID, f.seller.ID, admin.ID} {
		got, err := f.svc.GetOrderByID(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	}
	_, err := f.svc.GetOrderByID(ctx, other.ID, order.ID)
	requireCode(t, err, http.StatusForbidden)

	orders, err := f.svc.GetOrdersOfUser(ctx, f.buyer.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	_, err = f.svc.GetOrdersOfUser(ctx, other.ID, f.buyer.ID)
	requireCode(t, err, http.StatusForbidden)
	orders, err = f.svc.GetOrdersOfUser(ctx, admin.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = f.svc.GetOrdersOfShop(ctx, f.seller.ID, f.seller.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	_, err = f.svc.GetOrdersOfShop(ctx, other.ID, f.seller.ID)
	requireCode(t, err, http.StatusForbidden)

	_, err = f.svc.AdminListOrders(ctx, f.buyer.ID)
	requireCode(t, err, http.StatusForbidden)
	orders, err = f.svc.AdminListOrders(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSellerCredit(t *testing.T) {
	assert.InDelta(t, 900.0, SellerCredit(1000), 0.0001)
	assert.InDelta(t, 89.91, SellerCredit(99.9), 0.0001)
}
