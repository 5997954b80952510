package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod enumerates the supported checkout methods.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCOD:
		return true
	}
	return false
}

// PaymentStatus tracks one payment attempt. Allowed transitions:
// pending -> completed|failed, completed -> refunded.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// CardDetails carries raw card input for the simulated gateway. Only
// the last four digits are ever persisted.
type CardDetails struct {
	CardNumber  string `json:"cardNumber"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CVV         string `json:"cvv"`
}

// PaymentDetails is the persisted, masked subset of payment input.
type PaymentDetails struct {
	CardLast4  string `bson:"cardLast4,omitempty" json:"cardLast4,omitempty"`
	WalletType string `bson:"walletType,omitempty" json:"walletType,omitempty"`
}

// RefundDetails records a processed refund.
type RefundDetails struct {
	Reason     string    `bson:"reason" json:"reason"`
	RefundedAt time.Time `bson:"refundedAt" json:"refundedAt"`
	Amount     float64   `bson:"amount" json:"amount"`
}

// Payment is one payment attempt tied to an order. Amount is copied
// from the order total at processing time.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        primitive.ObjectID `bson:"order" json:"orderId"`
	UserID         primitive.ObjectID `bson:"user" json:"userId"`
	Amount         float64            `bson:"amount" json:"amount"`
	Method         PaymentMethod      `bson:"method" json:"method"`
	Status         PaymentStatus      `bson:"status" json:"status"`
	TransactionID  string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentDetails PaymentDetails     `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	RefundDetails  *RefundDetails     `bson:"refundDetails,omitempty" json:"refundDetails,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanRefund reports whether the payment may transition to refunded.
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusCompleted
}
