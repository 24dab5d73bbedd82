package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"dukan/internal/apperror"
	"dukan/internal/models"
	"dukan/internal/repositories"

	"go.uber.org/zap"
)

// CreateEventInput is a time-boxed promotion.
type CreateEventInput struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Tags          TagList   `json:"tags"`
	StartDate     time.Time `json:"startDate"`
	FinishDate    time.Time `json:"finishDate"`
	OriginalPrice float64   `json:"originalPrice"`
	DiscountPrice float64   `json:"discountPrice"`
	Stock         int       `json:"stock"`
	Images        []string  `json:"images"`
}

type EventService struct {
	store repositories.Store
	log   *zap.Logger
}

func NewEventService(store repositories.Store, log *zap.Logger) *EventService {
	return &EventService{store: store, log: log}
}

func (s *EventService) CreateEvent(ctx context.Context, userID string, in CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" || in.Category == "" {
		return nil, apperror.BadRequest("Please provide all required event fields")
	}
	if in.DiscountPrice <= 0 || in.Stock < 0 {
		return nil, apperror.BadRequest("Please provide a valid price and stock")
	}
	if in.StartDate.IsZero() || in.FinishDate.IsZero() {
		return nil, apperror.BadRequest("Event start and finish dates are required")
	}
	if !in.FinishDate.After(in.StartDate) {
		return nil, apperror.BadRequest("Event finish date must be after start date")
	}

	seller, err := requireShop(ctx, s.store, userID, "Only sellers can create events",
		"Seller profile not found. Please create a seller profile first")
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		SellerID:      seller.ID,
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Category:      in.Category,
		Tags:          in.Tags,
		StartDate:     in.StartDate,
		FinishDate:    in.FinishDate,
		Status:        models.EventRunning,
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		Images:        in.Images,
	}
	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, apperror.Internal("Failed to create event", err)
	}
	return event, nil
}

func (s *EventService) GetAllEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.Events().List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list events", err)
	}
	return events, nil
}

func (s *EventService) GetShopEvents(ctx context.Context, sellerID string) ([]models.Event, error) {
	if err := requireSellerAccount(ctx, s.store, sellerID); err != nil {
		return nil, err
	}
	events, err := s.store.Events().ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Internal("Failed to list shop events", err)
	}
	return events, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.store.Events().GetByID(ctx, eventID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("Event not found")
	}
	if err != nil {
		return apperror.Internal("Failed to delete event", err)
	}
	if event.SellerID != userID {
		return apperror.Forbidden("You are not authorized to delete this event")
	}
	if err := s.store.Events().Delete(ctx, event.ID); err != nil {
		return apperror.Internal("Failed to delete event", err)
	}
	return nil
}

func (s *EventService) AdminListEvents(ctx context.Context, actorID string) ([]models.Event, error) {
	actor, err := loadAccount(ctx, s.store.Users(), actorID, "User not found")
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, "Only admin can get events", models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.GetAllEvents(ctx)
}
