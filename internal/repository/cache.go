package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
)

const (
	productKeyPrefix = "product:"
	defaultCacheTTL  = 5 * time.Minute
)

// ProductCache is a read-through cache for the read-heavy catalog.
// A cache error is never fatal to a request.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// RedisProductCache implements ProductCache on Redis with a TTL.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisProductCache(cfg config.RedisConfig) *RedisProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("product-cache"),
	}
}

// Get returns (nil, nil) on a cache miss.
func (c *RedisProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss", logging.Fields{"product_id": id})
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}

	c.logger.Debug("Cache hit", logging.Fields{"product_id": id})
	return &product, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, productKeyPrefix+product.ID.Hex(), data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"product_id": product.ID.Hex(),
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKeyPrefix+id).Err()
}

// Close releases the underlying redis connection.
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
