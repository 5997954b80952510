package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/models"
)

// MongoPaymentRepository persists payment attempts. Payments are never
// deleted.
type MongoPaymentRepository struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{coll: db.Collection(paymentsCollection)}
}

func (r *MongoPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, payment)
	if err != nil {
		return err
	}
	payment.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *MongoPaymentRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.coll.FindOne(ctx, bson.M{"order": orderID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *MongoPaymentRepository) ListByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]*models.Payment, error) {
	cur, err := r.coll.Find(ctx, bson.M{"order": orderID})
	if err != nil {
		return nil, err
	}
	var payments []*models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *MongoPaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": payment.ID}, payment)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
