package services

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers one transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

// EventPublisher publishes a domain event. Publishing is best effort:
// callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Routing keys for domain events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderRefund        = "order.refund_requested"
	EventOrderRefunded      = "order.refunded"
	EventWithdrawCreated    = "withdraw.created"
	EventWithdrawApproved   = "withdraw.approved"
)

// OrderEvent is the payload of every order.* event.
type OrderEvent struct {
	OrderID    string  `json:"orderId"`
	UserID     string  `json:"userId"`
	SellerID   string  `json:"sellerId,omitempty"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"totalPrice"`
}

// WithdrawEvent is the payload of every withdraw.* event.
type WithdrawEvent struct {
	WithdrawID string  `json:"withdrawId"`
	SellerID   string  `json:"sellerId"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}

// publish sends an event when a publisher is configured and only logs
// failures.
func publish(ctx context.Context, p EventPublisher, log *zap.Logger, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
