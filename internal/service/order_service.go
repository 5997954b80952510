package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/events"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// CreateOrderInput carries everything needed to place an order from the
// user's current cart.
type CreateOrderInput struct {
	ShippingAddress models.ShippingAddress
	PaymentMethod   models.PaymentMethod
	CardDetails     models.CardDetails
}

// CreateOrderResult is returned to the caller after checkout.
type CreateOrderResult struct {
	Order                *models.Order   `json:"order"`
	Payment              *models.Payment `json:"payment"`
	RequiresPrescription bool            `json:"requiresPrescription"`
}

// AdminOrderDetails pairs an order with its prescription, if any.
type AdminOrderDetails struct {
	Order        *models.Order        `json:"order"`
	Prescription *models.Prescription `json:"prescription,omitempty"`
}

// OrderList is a paginated admin listing.
type OrderList struct {
	Orders []*models.Order `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// OrderService owns the order lifecycle: checkout from the cart,
// user-scoped reads, cancellation and privileged status transitions.
type OrderService struct {
	orders        repository.OrderRepository
	carts         repository.CartRepository
	products      repository.ProductRepository
	prescriptions repository.PrescriptionRepository
	payments      *PaymentService
	publisher     events.OrderEventPublisher
	taxRate       float64
	logger        *logging.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	prescriptions repository.PrescriptionRepository,
	payments *PaymentService,
	publisher events.OrderEventPublisher,
	taxRate float64,
) *OrderService {
	return &OrderService{
		orders:        orders,
		carts:         carts,
		products:      products,
		prescriptions: prescriptions,
		payments:      payments,
		publisher:     publisher,
		taxRate:       taxRate,
		logger:        logging.NewLogger("order-service"),
	}
}

// CreateOrder places an order from the user's cart. Line prices are
// frozen at creation time. Payment is attempted immediately; a payment
// processing error leaves the order persisted with paymentStatus failed.
// The cart is deleted whenever payment processing completes, whether or
// not the charge succeeded.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, input CreateOrderInput) (*CreateOrderResult, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.NewValidationError("cart", "Cart is empty")
	}

	if !input.PaymentMethod.IsValid() {
		return nil, apperrors.NewValidationError("paymentMethod", "Invalid payment method")
	}

	if err := ValidateShippingAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	requiresPrescription := false
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewValidationError("items", "Product not found: "+line.ProductID.Hex())
			}
			return nil, err
		}
		if line.Quantity > product.StockQuantity {
			return nil, apperrors.NewValidationError("items", "Insufficient stock for "+product.Name)
		}
		if product.RequiresPrescription {
			requiresPrescription = true
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	order := &models.Order{
		UserID:               userID,
		Items:                items,
		ShippingAddress:      input.ShippingAddress,
		PaymentMethod:        input.PaymentMethod,
		PaymentStatus:        models.PaymentStatusPending,
		OrderStatus:          models.OrderStatusPending,
		PrescriptionRequired: requiresPrescription,
		PrescriptionStatus:   models.PrescriptionStateNotRequired,
	}
	if requiresPrescription {
		order.OrderStatus = models.OrderStatusAwaitingPrescription
		order.PrescriptionStatus = models.PrescriptionStatePending
	}
	order.Tracking = models.Tracking{
		CurrentStatus: order.OrderStatus,
		Updates:       []models.TrackingUpdate{},
	}

	subtotal := Round2(order.Subtotal())
	shippingFee := CalculateShippingFee(items, input.ShippingAddress)
	totals := CalculateOrderTotals(subtotal, shippingFee, s.taxRate)
	order.Tax = totals.Tax
	order.ShippingFee = totals.ShippingFee
	order.TotalAmount = totals.Total

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	payment, err := s.payments.ProcessPayment(ctx, order.ID, userID, input.PaymentMethod, input.CardDetails)
	if err != nil {
		order.PaymentStatus = models.PaymentStatusFailed
		if updateErr := s.orders.Update(ctx, order); updateErr != nil {
			s.logger.Error("Failed to mark order payment failed", logging.Fields{
				"order_id": order.ID.Hex(),
				"error":    updateErr.Error(),
			})
		}
		return nil, apperrors.Wrap(err, "Payment failed: "+err.Error())
	}
	order.PaymentStatus = payment.Status

	if payment.Status == models.PaymentStatusCompleted && !requiresPrescription {
		for _, item := range items {
			if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				s.logger.Error("Failed to decrement stock", logging.Fields{
					"order_id":   order.ID.Hex(),
					"product_id": item.ProductID.Hex(),
					"error":      err.Error(),
				})
			}
		}
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil && !apperrors.IsNotFound(err) {
		s.logger.Error("Failed to delete cart after checkout", logging.Fields{
			"cart_id": cart.ID.Hex(),
			"error":   err.Error(),
		})
	}

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Error("Failed to publish order created event", logging.Fields{
			"order_id": order.ID.Hex(),
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order created", logging.Fields{
		"order_id":              order.ID.Hex(),
		"user_id":               userID.Hex(),
		"total":                 order.TotalAmount,
		"payment_status":        string(order.PaymentStatus),
		"requires_prescription": requiresPrescription,
	})

	return &CreateOrderResult{
		Order:                order,
		Payment:              payment,
		RequiresPrescription: requiresPrescription,
	}, nil
}

// GetUserOrders lists the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetOrder fetches one order scoped to its owner.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}
	return order, nil
}

// GetPrescriptionRequiredOrders lists the user's orders still waiting on
// a prescription decision.
func (s *OrderService) GetPrescriptionRequiredOrders(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	return s.orders.ListPrescriptionRequired(ctx, userID)
}

// ListAllOrders is the admin listing with status and prescription
// filters plus pagination.
func (s *OrderService) ListAllOrders(ctx context.Context, filter repository.OrderFilter) (*OrderList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderList{
		Orders: orders,
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}, nil
}

// GetOrderDetails returns any order by id with its prescription
// attached, for admin review.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID primitive.ObjectID) (*AdminOrderDetails, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	details := &AdminOrderDetails{Order: order}
	prescription, err := s.prescriptions.GetByOrderID(ctx, orderID)
	if err == nil {
		details.Prescription = prescription
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}
	return details, nil
}

// CancelOrder cancels a user's own order. Stock is restored when it was
// already decremented, and a completed payment is refunded.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID primitive.ObjectID, reason string) (*models.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Order not found")
		}
		return nil, err
	}

	if !order.CanCancel() {
		return nil, apperrors.NewValidationError("orderStatus", "Cannot cancel order in "+string(order.OrderStatus)+" status")
	}

	if order.OrderStatus.StockDeducted() {
		for _, item := range order.Items {
			if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				s.logger.Error("Failed to restore stock", logging.Fields{
					"order_id":   order.ID.Hex(),
					"product_id": item.ProductID.Hex(),
					"error":      err.Error(),
				})
			}
		}
	}

	if order.PaymentStatus == models.PaymentStatusCompleted {
		payment, err := s.payments.payments.GetByOrderID(ctx, order.ID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				return nil, err
			}
		} else {
			if _, err := s.payments.ProcessRefund(ctx, payment.ID, "Order cancelled"); err != nil {
				return nil, err
			}
			// ProcessRefund already mirrored refunded onto the stored
			// order; carry it on the local copy so the final update
			// does not revert it.
			order.PaymentStatus = models.PaymentStatusRefunded
		}
	}

	if reason == "" {
		reason = "Cancelled by user"
	}
	order.OrderStatus = models.OrderStatusCancelled
	order.CancellationReason = reason
	order.Tracking.CurrentStatus = models.OrderStatusCancelled
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishOrderCancelled(ctx, order, reason); err != nil {
		s.logger.Error("Failed to publish order cancelled event", logging.Fields{
			"order_id": order.ID.Hex(),
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order cancelled", logging.Fields{
		"order_id": order.ID.Hex(),
		"user_id":  userID.Hex(),
		"reason":   reason,
	})

	return order, nil
}

// UpdateOrderStatus is the privileged transition. Confirming a
// prescription-required order requires an approved prescription and
// performs the deferred stock decrement.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("orderStatus", "Invalid order status")
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

	if status == models.OrderStatusConfirmed && order.PrescriptionRequired {
		if order.PrescriptionStatus != models.PrescriptionStateApproved {
			return nil, apperrors.NewValidationError("orderStatus", "Cannot confirm order before prescription approval")
		}
		for _, item := range order.Items {
			if err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				s.logger.Error("Failed to decrement stock", logging.Fields{
					"order_id":   order.ID.Hex(),
					"product_id": item.ProductID.Hex(),
					"error":      err.Error(),
				})
			}
		}
	}

	previous := order.OrderStatus
	order.OrderStatus = status
	order.Tracking.CurrentStatus = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Error("Failed to publish status change event", logging.Fields{
			"order_id": order.ID.Hex(),
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order status updated", logging.Fields{
		"order_id": order.ID.Hex(),
		"from":     string(previous),
		"to":       string(status),
	})

	return order, nil
}

// markCancelledByRejection is used by prescription verification when the
// pharmacist rejects the upload.
func (s *OrderService) markCancelledByRejection(ctx context.Context, order *models.Order) error {
	previous := order.OrderStatus
	order.OrderStatus = models.OrderStatusCancelled
	order.PrescriptionStatus = models.PrescriptionStateRejected
	order.CancellationReason = "Prescription rejected"
	order.Tracking.CurrentStatus = models.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Error("Failed to publish status change event", logging.Fields{
			"order_id": order.ID.Hex(),
			"error":    err.Error(),
		})
	}
	return nil
}
