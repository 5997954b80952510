package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// CartService manages the per-user pre-order item set. Quantities are
// checked against live stock on every mutation; the cart total tracks
// current catalog prices until checkout freezes them.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *logging.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logging.NewLogger("cart-service"),
	}
}

// GetCart returns the user's cart, or an empty one if none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a product, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidationError("quantity", "Quantity must be at least 1")
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	found := false
	for i, item := range cart.Items {
		if item.ProductID == productID {
			requested += item.Quantity
			cart.Items[i].Quantity = requested
			found = true
			break
		}
	}
	if requested > product.StockQuantity {
		return nil, apperrors.NewValidationError("quantity", "Insufficient stock for "+product.Name)
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	return s.save(ctx, cart)
}

// UpdateItem sets the quantity of an existing line. Quantity zero
// removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.NewValidationError("quantity", "Quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		return nil, apperrors.NewValidationError("quantity", "Insufficient stock for "+product.Name)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, cart)
		}
	}
	return nil, apperrors.NewNotFoundError("Item not in cart")
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, cart)
		}
	}
	return nil, apperrors.NewNotFoundError("Item not in cart")
}

// ClearCart empties the user's cart. Clearing an absent cart is a no-op.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return s.save(ctx, cart)
}

func (s *CartService) getProduct(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("Product not found")
		}
		return nil, err
	}
	if product.Expired(time.Now()) {
		return nil, apperrors.NewValidationError("productId", "Product is expired")
	}
	return product, nil
}

// save recomputes the total at current catalog prices and upserts.
func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	var total float64
	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		total += product.Price * float64(item.Quantity)
	}
	cart.TotalAmount = Round2(total)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
