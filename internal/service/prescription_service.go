package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// PrescriptionService handles uploads and pharmacist verification. A
// verification decision moves the owning order forward: approval sends
// it to processing, rejection cancels it.
type PrescriptionService struct {
	prescriptions repository.PrescriptionRepository
	orders        repository.OrderRepository
	orderService  *OrderService
	logger        *logging.Logger
}

func NewPrescriptionService(
	prescriptions repository.PrescriptionRepository,
	orders repository.OrderRepository,
	orderService *OrderService,
) *PrescriptionService {
	return &PrescriptionService{
		prescriptions: prescriptions,
		orders:        orders,
		orderService:  orderService,
		logger:        logging.NewLogger("prescription-service"),
	}
}

// Upload records an uploaded prescription file for an order. The order
// must belong to the user, require a prescription, and still be waiting
// on one.
func (s *PrescriptionService) Upload(ctx context.Context, orderID, userID primitive.ObjectID, imageURL string) (*models.Prescription, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	if !order.PrescriptionRequired {
		return nil, apperrors.NewValidationError("orderId", "Order does not require a prescription")
	}
	if order.PrescriptionStatus != models.PrescriptionStatePending {
		return nil, apperrors.NewValidationError("orderId", "Prescription already reviewed for this order")
	}

	prescription := &models.Prescription{
		UserID:             userID,
		OrderID:            orderID,
		ImageURL:           imageURL,
		VerificationStatus: models.VerificationStatusPending,
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, err
	}

	s.logger.Info("Prescription uploaded", logging.Fields{
		"prescription_id": prescription.ID.Hex(),
		"order_id":        orderID.Hex(),
		"user_id":         userID.Hex(),
	})

	return prescription, nil
}

// GetUserPrescriptions lists the user's uploads, newest first.
func (s *PrescriptionService) GetUserPrescriptions(ctx context.Context, userID primitive.ObjectID) ([]*models.Prescription, error) {
	return s.prescriptions.ListByUser(ctx, userID)
}

// GetPendingPrescriptions is the pharmacist review queue, oldest first.
func (s *PrescriptionService) GetPendingPrescriptions(ctx context.Context) ([]*models.Prescription, error) {
	return s.prescriptions.ListPending(ctx)
}

// GetByOrder fetches the prescription attached to an order.
func (s *PrescriptionService) GetByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Prescription, error) {
	prescription, err := s.prescriptions.GetByOrderID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Prescription not found")
		}
		return nil, err
	}
	return prescription, nil
}

// Verify records the pharmacist's decision. Notes are mandatory when
// rejecting. Each prescription is decided at most once.
func (s *PrescriptionService) Verify(ctx context.Context, prescriptionID, verifierID primitive.ObjectID, status models.VerificationStatus, notes string) (*models.Prescription, error) {
	if status != models.VerificationStatusApproved && status != models.VerificationStatusRejected {
		return nil, apperrors.NewValidationError("status", "Status must be approved or rejected")
	}
	if status == models.VerificationStatusRejected && notes == "" {
		return nil, apperrors.NewValidationError("notes", "Notes are required when rejecting a prescription")
	}

	prescription, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Prescription not found")
		}
		return nil, err
	}
	if prescription.VerificationStatus != models.VerificationStatusPending {
		return nil, apperrors.NewValidationError("status", "Prescription already reviewed")
	}

	now := time.Now()
	prescription.VerificationStatus = status
	prescription.VerifiedBy = &verifierID
	prescription.VerificationNotes = notes
	prescription.VerifiedAt = &now
	if err := s.prescriptions.Update(ctx, prescription); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, prescription.OrderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	if status == models.VerificationStatusApproved {
		order.PrescriptionStatus = models.PrescriptionStateApproved
		order.OrderStatus = models.OrderStatusProcessing
		order.Tracking.CurrentStatus = models.OrderStatusProcessing
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
	} else {
		if err := s.orderService.markCancelledByRejection(ctx, order); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Prescription verified", logging.Fields{
		"prescription_id": prescription.ID.Hex(),
		"order_id":        prescription.OrderID.Hex(),
		"verified_by":     verifierID.Hex(),
		"status":          string(status),
	})

	return prescription, nil
}
