package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"

	"dukan/internal/models"
	"dukan/internal/repositories"
	"dukan/internal/services"

	"go.uber.org/zap"
)

// UserLookup resolves the recipient of a notification.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Notifier turns order events into buyer emails. It is the consumer side of
// the event exchange; events that need no email are only logged.
type Notifier struct {
	users  UserLookup
	mailer services.Mailer
	log    *zap.Logger
}

func NewNotifier(users UserLookup, mailer services.Mailer, log *zap.Logger) *Notifier {
	return &Notifier{users: users, mailer: mailer, log: log}
}

// Handle processes one event. Malformed payloads and failed sends return an
// error so the broker can redeliver.
func (n *Notifier) Handle(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case services.EventOrderStatusUpdated, services.EventOrderRefunded:
	default:
		n.log.Info("event received", zap.String("routing_key", routingKey))
		return nil
	}

	var evt services.OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", routingKey, err)
	}

	subject, headline := orderMail(routingKey, evt.Status)
	if subject == "" {
		return nil
	}

	buyer, err := n.users.GetByID(ctx, evt.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		n.log.Warn("order event for unknown buyer", zap.String("order_id", evt.OrderID), zap.String("user_id", evt.UserID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load buyer %s: %w", evt.UserID, err)
	}

	bodyHTML := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:auto">
<h2>%s</h2>
<p>Hello %s,</p>
<p>Order <strong>%s</strong> is now <strong>%s</strong>.</p>
<p>Order total: ₹%.2f</p>
</div>`, headline, html.EscapeString(buyer.Name), evt.OrderID, html.EscapeString(evt.Status), evt.TotalPrice)
	bodyText := fmt.Sprintf("%s\n\nHello %s,\nOrder %s is now %s.\nOrder total: ₹%.2f",
		headline, buyer.Name, evt.OrderID, evt.Status, evt.TotalPrice)

	if err := n.mailer.Send(ctx, buyer.Email, subject, bodyHTML, bodyText); err != nil {
		return fmt.Errorf("failed to mail buyer for order %s: %w", evt.OrderID, err)
	}
	n.log.Info("order notification sent", zap.String("order_id", evt.OrderID), zap.String("status", evt.Status))
	return nil
}

// orderMail returns an empty subject for statuses that send nothing.
func orderMail(routingKey, status string) (subject, headline string) {
	if routingKey == services.EventOrderRefunded {
		return "Your refund has been processed", "Refund Successful"
	}
	if status == models.OrderDelivered {
		return "Your order has been delivered", "Order Delivered"
	}
	return "", ""
}
