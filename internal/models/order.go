package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks an order through fulfillment. Transitions are
// one-directional; delivered and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "pending"
	OrderStatusAwaitingPrescription  OrderStatus = "awaiting_prescription"
	OrderStatusProcessing            OrderStatus = "processing"
	OrderStatusConfirmed             OrderStatus = "confirmed"
	OrderStatusPacked                OrderStatus = "packed"
	OrderStatusShipped               OrderStatus = "shipped"
	OrderStatusDelivered             OrderStatus = "delivered"
	OrderStatusCancelled             OrderStatus = "cancelled"
)

// ValidOrderStatuses lists every status an admin may set directly.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaitingPrescription,
	OrderStatusProcessing,
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// StockDeducted reports whether stock has already been decremented for
// an order in this status. Used to decide whether cancellation must
// restore stock.
func (s OrderStatus) StockDeducted() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusPacked, OrderStatusShipped:
		return true
	}
	return false
}

// PrescriptionState is the order-level view of prescription review.
type PrescriptionState string

const (
	PrescriptionStatePending     PrescriptionState = "pending"
	PrescriptionStateApproved    PrescriptionState = "approved"
	PrescriptionStateRejected    PrescriptionState = "rejected"
	PrescriptionStateNotRequired PrescriptionState = "not_required"
)

// OrderItem is a frozen copy of a cart line: the unit price is captured
// at order time and never follows later catalog changes.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// ShippingAddress is validated field by field before order creation.
type ShippingAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
}

// TrackingUpdate is one appended entry in the shipment history.
type TrackingUpdate struct {
	Status      OrderStatus `bson:"status" json:"status"`
	Location    string      `bson:"location,omitempty" json:"location,omitempty"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Timestamp   time.Time   `bson:"timestamp" json:"timestamp"`
}

// Tracking is the embedded shipment sub-document on an order.
type Tracking struct {
	CurrentStatus     OrderStatus      `bson:"currentStatus" json:"currentStatus"`
	TrackingNumber    string           `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	CurrentLocation   string           `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	EstimatedDelivery *time.Time       `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	Updates           []TrackingUpdate `bson:"updates" json:"updates"`
}

// Order is a placed purchase. Monetary fields are rounded to two
// decimals and always satisfy TotalAmount == round2(subtotal + ShippingFee + Tax).
type Order struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID `bson:"user" json:"userId"`
	Items                []OrderItem        `bson:"items" json:"items"`
	ShippingAddress      ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod        PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus        PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus          OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	TotalAmount          float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingFee          float64            `bson:"shippingFee" json:"shippingFee"`
	Tax                  float64            `bson:"tax" json:"tax"`
	PrescriptionRequired bool               `bson:"prescriptionRequired" json:"prescriptionRequired"`
	PrescriptionStatus   PrescriptionState  `bson:"prescriptionStatus" json:"prescriptionStatus"`
	CancellationReason   string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Tracking             Tracking           `bson:"tracking" json:"tracking"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Subtotal sums the frozen line totals.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return !o.OrderStatus.IsTerminal()
}
