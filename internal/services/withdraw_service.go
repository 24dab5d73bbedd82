package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"dukan/internal/apperror"
	"dukan/internal/metrics"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mailTimeout bounds the best-effort notification emails.
const mailTimeout = 15 * time.Second

// WithdrawView is a payout request with the shop it belongs to.
type WithdrawView struct {
	models.Withdraw
	ShopInfo *models.Seller `json:"shopInfo,omitempty"`
}

// WithdrawService handles seller payout requests.
type WithdrawService struct {
	store     repositories.Store
	mailer    Mailer
	publisher EventPublisher
	metrics   *metrics.Manager
	log       *zap.Logger
}

func NewWithdrawService(store repositories.Store, mailer Mailer, publisher EventPublisher, m *metrics.Manager, log *zap.Logger) *WithdrawService {
	return &WithdrawService{
		store:     store,
		mailer:    mailer,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// CreateWithdrawRequest debits amount from the caller's shop and records a
// Processing withdraw with a matching ledger line, all in one transaction.
func (s *WithdrawService) CreateWithdrawRequest(ctx context.Context, userID string, amount float64) (*models.Withdraw, error) {
	if amount <= 0 {
		return nil, apperror.BadRequest("Please provide a valid withdrawal amount")
	}

	user, err := loadAccount(ctx, s.store.Users(), userID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(user, "Only sellers can create withdrawal requests", models.RoleSeller, models.RoleAdmin); err != nil {
		return nil, err
	}
	seller, err := s.store.Sellers().GetByUserID(ctx, user.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Seller profile not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to create withdrawal request", err)
	}
	if amount > seller.AvailableBalance {
		return nil, insufficientBalance(seller.AvailableBalance)
	}

	withdraw := &models.Withdraw{SellerID: user.ID, Amount: amount, Status: models.WithdrawProcessing}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := tx.Sellers().Debit(ctx, seller.ID, amount); err != nil {
			return err
		}
		if err := tx.Withdraws().Create(ctx, withdraw); err != nil {
			return err
		}
		return tx.Sellers().AppendTransaction(ctx, seller.ID, &models.SellerTransaction{
			Amount: amount,
			Status: models.TxStatusProcessing,
		})
	})
	if errors.Is(err, repositories.ErrInsufficientBalance) {
		return nil, insufficientBalance(seller.AvailableBalance)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to create withdrawal request", err)
	}

	s.metrics.Withdrawal(withdraw.Status)
	s.log.Info("withdraw requested", zap.String("withdraw_id", withdraw.ID), zap.String("seller_id", user.ID), zap.Float64("amount", amount))
	s.notify(ctx, user, "Withdrawal Request Submitted",
		fmt.Sprintf("Your withdrawal request of ₹%s is being processed. It usually takes 3 to 7 business days.", money(amount)))
	publish(ctx, s.publisher, s.log, EventWithdrawCreated, WithdrawEvent{
		WithdrawID: withdraw.ID,
		SellerID:   withdraw.SellerID,
		Amount:     withdraw.Amount,
		Status:     withdraw.Status,
	})
	return withdraw, nil
}

// ApproveWithdrawRequest marks a withdraw succeeded and appends the matching
// ledger line to the requesting shop. A non-empty sellerID is a shop id and
// must name that same shop.
func (s *WithdrawService) ApproveWithdrawRequest(ctx context.Context, adminID, withdrawID, sellerID string) (*models.Withdraw, error) {
	admin, err := loadAccount(ctx, s.store.Users(), adminID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(admin, "Access denied. Admin privileges required.", models.RoleAdmin); err != nil {
		return nil, err
	}

	withdraw, err := s.store.Withdraws().GetByID(ctx, withdrawID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Withdrawal request not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to update withdrawal request", err)
	}
	if withdraw.Status == models.WithdrawSucceed {
		return nil, apperror.BadRequest("Withdrawal request is already approved")
	}
	var seller *models.Seller
	if sellerID != "" {
		seller, err = s.store.Sellers().GetByID(ctx, sellerID)
	} else {
		seller, err = s.store.Sellers().GetByUserID(ctx, withdraw.SellerID)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NotFound("Seller profile not found")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to update withdrawal request", err)
	}
	if seller.UserID != withdraw.SellerID {
		return nil, apperror.BadRequest("Seller does not own this withdrawal request")
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		updated, err := tx.Withdraws().UpdateStatus(ctx, withdraw.ID, models.WithdrawSucceed)
		if err != nil {
			return err
		}
		withdraw = updated
		return tx.Sellers().AppendTransaction(ctx, seller.ID, &models.SellerTransaction{
			Amount:    withdraw.Amount,
			Status:    withdraw.Status,
			CreatedAt: withdraw.CreatedAt,
		})
	})
	if err != nil {
		return nil, apperror.Internal("Failed to update withdrawal request", err)
	}

	s.metrics.Withdrawal(withdraw.Status)
	s.log.Info("withdraw approved", zap.String("withdraw_id", withdraw.ID), zap.String("admin_id", admin.ID))
	if owner, err := s.store.Users().GetByID(ctx, seller.UserID); err == nil {
		s.notify(ctx, owner, "Payment Confirmation - Withdrawal Request Approved",
			fmt.Sprintf("Your withdrawal request of ₹%s has been approved and is on its way to your bank account.", money(withdraw.Amount)))
	}
	publish(ctx, s.publisher, s.log, EventWithdrawApproved, WithdrawEvent{
		WithdrawID: withdraw.ID,
		SellerID:   withdraw.SellerID,
		Amount:     withdraw.Amount,
		Status:     withdraw.Status,
	})
	return withdraw, nil
}

// AdminListWithdraws lists every payout request, newest first.
func (s *WithdrawService) AdminListWithdraws(ctx context.Context, adminID string) ([]WithdrawView, error) {
	admin, err := loadAccount(ctx, s.store.Users(), adminID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(admin, "Only admins can access withdraw requests", models.RoleAdmin); err != nil {
		return nil, err
	}

	withdraws, err := s.store.Withdraws().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list withdraw requests", err)
	}
	shops := make(map[string]*models.Seller)
	views := make([]WithdrawView, 0, len(withdraws))
	for _, w := range withdraws {
		shop, seen := shops[w.SellerID]
		if !seen {
			shop, err = s.store.Sellers().GetByUserID(ctx, w.SellerID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, apperror.Internal("Failed to list withdraw requests", err)
			}
			shops[w.SellerID] = shop
		}
		views = append(views, WithdrawView{Withdraw: w, ShopInfo: shop})
	}
	return views, nil
}

// notify emails user and only logs a failure.
func (s *WithdrawService) notify(ctx context.Context, user *models.User, subject, text string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	defer cancel()

	body := fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", html.EscapeString(user.Name), html.EscapeString(text))
	if err := s.mailer.Send(ctx, user.Email, subject, body, text); err != nil {
		s.metrics.EmailFailed("withdraw")
		s.log.Warn("failed to send withdraw email", zap.String("user_id", user.ID), zap.String("subject", subject), zap.Error(err))
	}
}

func insufficientBalance(available float64) error {
	return apperror.BadRequest(fmt.Sprintf("Insufficient balance. Available: ₹%s", money(available)))
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
