package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

const defaultExpiryThresholdDays = 90

// ProductList is a paginated catalog listing.
type ProductList struct {
	Products []*models.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// CatalogService owns product CRUD, search and expiry housekeeping.
// Single-product reads go through the cache when one is configured.
type CatalogService struct {
	products repository.ProductRepository
	cache    repository.ProductCache
	logger   *logging.Logger
}

// NewCatalogService creates the catalog. cache may be nil when product
// caching is disabled.
func NewCatalogService(products repository.ProductRepository, cache repository.ProductCache) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    cache,
		logger:   logging.NewLogger("catalog-service"),
	}
}

// CreateProduct validates and stores a new catalog entry.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.logger.Info("Product created", logging.Fields{
		"product_id": product.ID.Hex(),
		"name":       product.Name,
	})
	return nil
}

// GetProduct reads one product, through the cache when enabled.
func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id.Hex()); err == nil && cached != nil {
			return cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Product not found")
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Debug("Cache populate failed", logging.Fields{
				"product_id": id.Hex(),
				"error":      err.Error(),
			})
		}
	}
	return product, nil
}

// UpdateProduct replaces a product and invalidates its cache entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.products.Update(ctx, product); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFoundError("Product not found")
		}
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

// DeleteProduct removes a product and invalidates its cache entry.
func (s *CatalogService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFoundError("Product not found")
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ListProducts applies catalog filters with pagination.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductList{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// SearchProducts matches the query against names and descriptions,
// ordering exact name matches before the rest.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]*models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("q", "Search query is required")
	}

	products, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(query)
	nameMatches := make([]*models.Product, 0, len(products))
	rest := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), lowered) {
			nameMatches = append(nameMatches, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(nameMatches, rest...), nil
}

// NearlyExpiredProducts lists products expiring within thresholdDays.
// A non-positive threshold falls back to 90 days.
func (s *CatalogService) NearlyExpiredProducts(ctx context.Context, thresholdDays int) ([]*models.Product, error) {
	if thresholdDays <= 0 {
		thresholdDays = defaultExpiryThresholdDays
	}
	threshold := time.Now().AddDate(0, 0, thresholdDays)
	return s.products.NearlyExpired(ctx, threshold)
}

// RemoveExpiredProducts deletes every product past its expiry date and
// returns the count removed.
func (s *CatalogService) RemoveExpiredProducts(ctx context.Context) (int64, error) {
	removed, err := s.products.RemoveExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Expired products removed", logging.Fields{"count": removed})
	}
	return removed, nil
}

func (s *CatalogService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id.Hex()); err != nil {
		s.logger.Debug("Cache invalidate failed", logging.Fields{
			"product_id": id.Hex(),
			"error":      err.Error(),
		})
	}
}

func validateProduct(product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperrors.NewValidationError("name", "Product name is required")
	}
	if product.Price <= 0 {
		return apperrors.NewValidationError("price", "Price must be greater than zero")
	}
	switch product.Category {
	case models.CategoryPrescription, models.CategoryOTC, models.CategoryHealthcare, models.CategorySupplies:
	default:
		return apperrors.NewValidationError("category", "Invalid product category")
	}
	if product.StockQuantity < 0 {
		return apperrors.NewValidationError("stockQuantity", "Stock quantity cannot be negative")
	}
	return nil
}
