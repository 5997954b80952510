package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

const estimatedDeliveryDays = 3

// TrackingUpdateInput is one privileged tracking append.
type TrackingUpdateInput struct {
	Status      models.OrderStatus
	Location    string
	Description string
}

// TrackingService reads and appends shipment history embedded on orders.
type TrackingService struct {
	orders repository.OrderRepository
	now    func() time.Time
	logger *logging.Logger
}

func NewTrackingService(orders repository.OrderRepository) *TrackingService {
	return &TrackingService{
		orders: orders,
		now:    time.Now,
		logger: logging.NewLogger("tracking-service"),
	}
}

// GetTracking returns the tracking sub-document of the user's own order.
func (s *TrackingService) GetTracking(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Tracking, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}
	return &order.Tracking, nil
}

// UpdateTracking appends a timestamped history entry and mirrors the
// status onto the order. Delivered and cancelled orders accept no
// further updates. The first transition to shipped assigns a tracking
// number and an estimated delivery date.
func (s *TrackingService) UpdateTracking(ctx context.Context, orderID primitive.ObjectID, input TrackingUpdateInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, apperrors.NewValidationError("status", "Invalid tracking status")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	if order.OrderStatus.IsTerminal() {
		return nil, apperrors.NewValidationError("orderStatus", "Cannot update order in "+string(order.OrderStatus)+" status")
	}

	now := s.now()
	order.Tracking.Updates = append(order.Tracking.Updates, models.TrackingUpdate{
		Status:      input.Status,
		Location:    input.Location,
		Description: input.Description,
		Timestamp:   now,
	})
	order.Tracking.CurrentStatus = input.Status
	if input.Location != "" {
		order.Tracking.CurrentLocation = input.Location
	}

	if input.Status == models.OrderStatusShipped {
		if order.Tracking.TrackingNumber == "" {
			order.Tracking.TrackingNumber = trackingNumber()
		}
		if order.Tracking.EstimatedDelivery == nil {
			estimate := now.AddDate(0, 0, estimatedDeliveryDays)
			order.Tracking.EstimatedDelivery = &estimate
		}
	}

	order.OrderStatus = input.Status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Tracking updated", logging.Fields{
		"order_id": order.ID.Hex(),
		"status":   string(input.Status),
		"location": input.Location,
	})

	return order, nil
}

func trackingNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TRK" + id[:12]
}
