package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medikart/medikart-backend/internal/config"
)

const (
	usersCollection         = "users"
	productsCollection      = "products"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
	paymentsCollection      = "payments"
	prescriptionsCollection = "prescriptions"
)

// Connect opens the mongo client and verifies connectivity within the
// configured timeout.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}
