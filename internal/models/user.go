package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role controls access to privileged routes.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RolePharmacy Role = "pharmacy"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePharmacy:
		return true
	}
	return false
}

// User is an account holder. Password holds the bcrypt hash and is
// never serialized to JSON.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Phone     string             `bson:"phone" json:"phone"`
	Address   ShippingAddress    `bson:"address,omitempty" json:"address,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
