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

// PaymentService owns payment attempts: processing through the gateway,
// COD settlement and refunds. Every payment status change is mirrored
// onto the owning order.
type PaymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	gateway  PaymentGateway
	logger   *logging.Logger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	gateway PaymentGateway,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		logger:   logging.NewLogger("payment-service"),
	}
}

// ProcessPayment charges the order total through the gateway, persists
// the attempt and mirrors the outcome onto the order's payment status.
// The amount is copied from the order at processing time.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID, userID primitive.ObjectID, method models.PaymentMethod, details models.CardDetails) (*models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	if !method.IsValid() {
		return nil, apperrors.NewValidationError("method", "Invalid payment method")
	}

	result, err := s.gateway.Charge(ctx, method, order.TotalAmount, details)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:       order.ID,
		UserID:        userID,
		Amount:        order.TotalAmount,
		Method:        method,
		Status:        result.Status,
		TransactionID: result.TransactionID,
		PaymentDetails: models.PaymentDetails{
			CardLast4: result.CardLast4,
		},
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	order.PaymentStatus = payment.Status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Payment processed", logging.Fields{
		"order_id":       order.ID.Hex(),
		"payment_id":     payment.ID.Hex(),
		"method":         string(method),
		"status":         string(payment.Status),
		"transaction_id": payment.TransactionID,
	})

	return payment, nil
}

// ConfirmCODPayment settles a cash-on-delivery payment. Only pending
// COD payments can be confirmed; a refunded payment stays refunded.
func (s *PaymentService) ConfirmCODPayment(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("paymentId", "Invalid payment")
		}
		return nil, err
	}
	if payment.Method != models.PaymentMethodCOD {
		return nil, apperrors.NewValidationError("paymentId", "Invalid payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, apperrors.NewValidationError("status", "Can only confirm pending payments")
	}

	payment.Status = models.PaymentStatusCompleted
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.mirrorOntoOrder(ctx, payment.OrderID, models.PaymentStatusCompleted); err != nil {
		return nil, err
	}

	s.logger.Info("COD payment confirmed", logging.Fields{
		"payment_id": payment.ID.Hex(),
		"order_id":   payment.OrderID.Hex(),
	})

	return payment, nil
}

// ProcessRefund refunds a completed payment, recording reason,
// timestamp and amount. Only completed payments can be refunded.
func (s *PaymentService) ProcessRefund(ctx context.Context, paymentID primitive.ObjectID, reason string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Payment not found")
		}
		return nil, err
	}

	if !payment.CanRefund() {
		return nil, apperrors.NewValidationError("status", "Can only refund completed payments")
	}

	payment.Status = models.PaymentStatusRefunded
	payment.RefundDetails = &models.RefundDetails{
		Reason:     reason,
		RefundedAt: time.Now(),
		Amount:     payment.Amount,
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.mirrorOntoOrder(ctx, payment.OrderID, models.PaymentStatusRefunded); err != nil {
		return nil, err
	}

	s.logger.Info("Refund processed", logging.Fields{
		"payment_id": payment.ID.Hex(),
		"order_id":   payment.OrderID.Hex(),
		"amount":     payment.Amount,
		"reason":     reason,
	})

	return payment, nil
}

// GetPaymentsByOrder lists every payment attempt for an order.
func (s *PaymentService) GetPaymentsByOrder(ctx context.Context, orderID primitive.ObjectID) ([]*models.Payment, error) {
	return s.payments.ListByOrderID(ctx, orderID)
}

func (s *PaymentService) mirrorOntoOrder(ctx context.Context, orderID primitive.ObjectID, status models.PaymentStatus) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	order.PaymentStatus = status
	return s.orders.Update(ctx, order)
}
