package services

import (
	"context"
	"errors"
	"time"

	"dukan/internal/apperror"
	"dukan/internal/metrics"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// serviceChargeRate is the marketplace's cut of every delivered order.
var serviceChargeRate = decimal.NewFromFloat(0.10)

// sellerStatuses are the statuses a seller may set through UpdateOrderStatus.
var sellerStatuses = map[string]bool{
	models.OrderProcessing:  true,
	models.OrderTransferred: true,
	models.OrderShipping:    true,
	models.OrderReceived:    true,
	models.OrderOnTheWay:    true,
	models.OrderDelivered:   true,
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	Cart            []models.CartItem       `json:"cart"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
	TotalPrice      float64                 `json:"totalPrice"`
	PaymentInfo     *models.PaymentInfo     `json:"paymentInfo"`
}

// OrderService drives the order lifecycle and the seller balance it settles.
type OrderService struct {
	store     repositories.Store
	publisher EventPublisher
	metrics   *metrics.Manager
	log       *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, publisher EventPublisher, m *metrics.Manager, log *zap.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// SellerCredit is what a seller earns from a delivered order of totalPrice.
func SellerCredit(totalPrice float64) float64 {
	total := decimal.NewFromFloat(totalPrice)
	credit, _ := total.Sub(total.Mul(serviceChargeRate)).Float64()
	return credit
}

// CreateOrder places an order for buyerID. Stock and balances are untouched
// until the order moves through its lifecycle.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Cart) == 0 {
		return nil, apperror.BadRequest("Cart is empty")
	}
	if in.ShippingAddress == nil || in.ShippingAddress.Address1 == "" {
		return nil, apperror.BadRequest("Shipping address is required")
	}
	if in.TotalPrice <= 0 {
		return nil, apperror.BadRequest("Invalid total price")
	}
	if in.PaymentInfo == nil || in.PaymentInfo.Type == "" {
		return nil, apperror.BadRequest("Payment information is required")
	}

	cart := make([]models.CartItem, 0, len(in.Cart))
	for _, item := range in.Cart {
		if item.ProductID == "" || item.SellerID == "" || item.Qty <= 0 {
			return nil, apperror.BadRequest("Every cart item needs a product, a seller and a quantity")
		}
		item.ID, item.OrderID, item.IsReviewed = 0, "", false
		cart = append(cart, item)
	}

	order := &models.Order{
		Cart:            cart,
		ShippingAddress: *in.ShippingAddress,
		UserID:          buyerID,
		TotalPrice:      in.TotalPrice,
		PaymentInfo:     *in.PaymentInfo,
		Status:          models.OrderProcessing,
		PaidAt:          s.now(),
	}
	if err := s.store.Orders().Create(ctx, order); err != nil {
		return nil, apperror.Internal("Failed to create order", err)
	}

	s.metrics.OrderCreated()
	s.log.Info("order created", zap.String("order_id", order.ID), zap.String("user_id", buyerID), zap.Float64("total", order.TotalPrice))
	publish(ctx, s.publisher, s.log, EventOrderCreated, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
	})
	return order, nil
}

// UpdateOrderStatus moves an order the acting seller takes part in to
// status. Moving to "Transferred to delivery partner" restocks every cart
// line; the first move to Delivered marks the payment succeeded and credits
// the seller the order total less the service charge. Side effects only run
// when the status actually changes. A seller without a shop profile still
// gets the status change but no credit.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, sellerID, orderID, status string) (*models.Order, error) {
	if !sellerStatuses[status] {
		return nil, apperror.BadRequest("Please provide a valid order status")
	}

	order, err := s.store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to update order status", err)
	}
	if !order.HasSeller(sellerID) {
		return nil, apperror.Forbidden("You are not authorized to update this order")
	}
	if order.Status == status {
		return order, nil
	}

	// A delivered order credits its seller once, even if it is moved back
	// and delivered again.
	var seller *models.Seller
	if status == models.OrderDelivered && order.DeliveredAt == nil {
		seller, err = s.store.Sellers().GetByUserID(ctx, sellerID)
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("delivered order has no seller profile to credit",
				zap.String("order_id", order.ID), zap.String("seller_id", sellerID))
			seller, err = nil, nil
		}
		if err != nil {
			return nil, apperror.Internal("Failed to update order status", err)
		}
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		switch status {
		case models.OrderTransferred:
			if err := restock(ctx, tx, order.Cart); err != nil {
				return err
			}
		case models.OrderDelivered:
			order.PaymentInfo.Status = models.PaymentSucceeded
			if order.DeliveredAt == nil {
				now := s.now()
				order.DeliveredAt = &now
			}
			if seller != nil {
				if err := tx.Sellers().AdjustBalance(ctx, seller.ID, SellerCredit(order.TotalPrice)); err != nil {
					return err
				}
			}
		}
		order.Status = status
		return tx.Orders().SaveStatus(ctx, order)
	})
	if err != nil {
		return nil, apperror.Internal("Failed to update order status", err)
	}

	s.metrics.OrderStatusChanged(status)
	s.log.Info("order status updated", zap.String("order_id", order.ID), zap.String("seller_id", sellerID), zap.String("status", status))
	publish(ctx, s.publisher, s.log, EventOrderStatusUpdated, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		SellerID:   sellerID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
	})
	return order, nil
}

// RequestRefund lets the buyer of a delivered order ask for their money back.
func (s *OrderService) RequestRefund(ctx context.Context, buyerID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Order not found with this id")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to request refund", err)
	}
	if order.UserID != buyerID {
		return nil, apperror.Forbidden("You are not authorized to refund this order")
	}
	if order.Status != models.OrderDelivered {
		return nil, apperror.BadRequest("You can only request refund for delivered orders")
	}

	order.Status = models.OrderProcessingRefund
	if err := s.store.Orders().SaveStatus(ctx, order); err != nil {
		return nil, apperror.Internal("Failed to request refund", err)
	}

	s.metrics.OrderStatusChanged(order.Status)
	publish(ctx, s.publisher, s.log, EventOrderRefund, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
	})
	return order, nil
}

// ApproveRefund settles a pending refund: the order is marked refunded, its
// lines are restocked, and the full total is debited from the acting
// seller with a Refunded ledger line. The balance may go negative.
func (s *OrderService) ApproveRefund(ctx context.Context, sellerID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Order not found with this id")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to approve refund", err)
	}
	if !order.HasSeller(sellerID) {
		return nil, apperror.Forbidden("You are not authorized to refund this order")
	}
	if order.Status != models.OrderProcessingRefund {
		return nil, apperror.BadRequest("This order is not in refund processing state")
	}

	seller, err := s.store.Sellers().GetByUserID(ctx, sellerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Seller profile not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to approve refund", err)
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		order.Status = models.OrderRefundSuccess
		if err := tx.Orders().SaveStatus(ctx, order); err != nil {
			return err
		}
		if err := restock(ctx, tx, order.Cart); err != nil {
			return err
		}
		if err := tx.Sellers().AdjustBalance(ctx, seller.ID, -order.TotalPrice); err != nil {
			return err
		}
		return tx.Sellers().AppendTransaction(ctx, seller.ID, &models.SellerTransaction{
			Amount: order.TotalPrice,
			Status: models.TxStatusRefunded,
		})
	})
	if err != nil {
		return nil, apperror.Internal("Failed to approve refund", err)
	}

	s.metrics.RefundApproved()
	s.log.Info("refund approved", zap.String("order_id", order.ID), zap.String("seller_id", sellerID), zap.Float64("amount", order.TotalPrice))
	publish(ctx, s.publisher, s.log, EventOrderRefunded, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		SellerID:   sellerID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
	})
	return order, nil
}

// GetOrderByID returns an order visible to actorID: its buyer, a seller on
// one of its lines, or an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, actorID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to get order", err)
	}
	if order.UserID == actorID || order.HasSeller(actorID) {
		return order, nil
	}
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "You are not authorized to view this order", models.RoleAdmin); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrdersOfUser lists a buyer's orders, newest first.
func (s *OrderService) GetOrdersOfUser(ctx context.Context, actorID, userID string) ([]models.Order, error) {
	if actorID != userID {
		actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
		if err != nil {
			return nil, err
		}
		if err := Authorize(actor, "You are not authorized to view these orders", models.RoleAdmin); err != nil {
			return nil, err
		}
	}
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to list orders", err)
	}
	return orders, nil
}

// GetOrdersOfShop lists the orders containing a line sold by sellerID,
// newest first. Only that seller may ask.
func (s *OrderService) GetOrdersOfShop(ctx context.Context, actorID, sellerID string) ([]models.Order, error) {
	if actorID != sellerID {
		return nil, apperror.Forbidden("You are not authorized to view these orders")
	}
	orders, err := s.store.Orders().ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Internal("Failed to list shop orders", err)
	}
	return orders, nil
}

func (s *OrderService) AdminListOrders(ctx context.Context, actorID string) ([]models.Order, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "Access denied. Only admins can view all orders", models.RoleAdmin); err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list orders", err)
	}
	return orders, nil
}

// restock adds every line's quantity back to its product's stock and takes
// it off soldOut.
func restock(ctx context.Context, tx repositories.Store, cart []models.CartItem) error {
	for _, item := range cart {
		if err := tx.Products().Restock(ctx, item.ProductID, item.Qty); err != nil {
			return err
		}
	}
	return nil
}
