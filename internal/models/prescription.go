package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationStatus is the pharmacist's decision on an upload.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// Prescription is an uploaded image awaiting pharmacist review, tied to
// one order. A verification decision is recorded once and drives the
// owning order's prescription and order status.
type Prescription struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"user" json:"userId"`
	OrderID            primitive.ObjectID  `bson:"order" json:"orderId"`
	ImageURL           string              `bson:"imageUrl" json:"imageUrl"`
	VerificationStatus VerificationStatus  `bson:"verificationStatus" json:"verificationStatus"`
	VerifiedBy         *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerificationNotes  string              `bson:"verificationNotes,omitempty" json:"verificationNotes,omitempty"`
	VerifiedAt         *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
}
