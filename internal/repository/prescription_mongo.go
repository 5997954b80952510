package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/models"
)

// MongoPrescriptionRepository persists prescription uploads.
type MongoPrescriptionRepository struct {
	coll *mongo.Collection
}

func NewMongoPrescriptionRepository(db *mongo.Database) *MongoPrescriptionRepository {
	return &MongoPrescriptionRepository{coll: db.Collection(prescriptionsCollection)}
}

func (r *MongoPrescriptionRepository) Create(ctx context.Context, prescription *models.Prescription) error {
	prescription.CreatedAt = time.Now()
	res, err := r.coll.InsertOne(ctx, prescription)
	if err != nil {
		return err
	}
	prescription.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoPrescriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&prescription)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *MongoPrescriptionRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.coll.FindOne(ctx, bson.M{"order": orderID}).Decode(&prescription)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *MongoPrescriptionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	var prescriptions []*models.Prescription
	if err := cur.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// ListPending returns the review queue, oldest upload first.
func (r *MongoPrescriptionRepository) ListPending(ctx context.Context) ([]*models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"verificationStatus": models.VerificationStatusPending}, opts)
	if err != nil {
		return nil, err
	}
	var prescriptions []*models.Prescription
	if err := cur.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (r *MongoPrescriptionRepository) Update(ctx context.Context, prescription *models.Prescription) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": prescription.ID}, prescription)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
