package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/models"
)

// ProductFilter narrows catalog listings. Nil pointer fields are
// ignored. Page is 1-based.
type ProductFilter struct {
	Categories           []models.ProductCategory
	Manufacturer         string
	MinPrice             *float64
	MaxPrice             *float64
	RequiresPrescription *bool
	ExpiryBefore         *time.Time
	ExpiryAfter          *time.Time
	ShowExpired          bool
	SortBy               string
	Page                 int
	Limit                int
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status               models.OrderStatus
	PrescriptionRequired *bool
	SortBy               string
	SortDesc             bool
	Page                 int
	Limit                int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ProductFilter) ([]*models.Product, int64, error)
	Search(ctx context.Context, query string) ([]*models.Product, error)
	// AdjustStock atomically adds delta (which may be negative) to the
	// product's stock quantity.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
	NearlyExpired(ctx context.Context, threshold time.Time) ([]*models.Product, error)
	RemoveExpired(ctx context.Context) (int64, error)
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// Save upserts the cart keyed by its user.
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error)
	ListPrescriptionRequired(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)
	ListByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *models.Prescription) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prescription, error)
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Prescription, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Prescription, error)
	ListPending(ctx context.Context) ([]*models.Prescription, error)
	Update(ctx context.Context, prescription *models.Prescription) error
}
