package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

func newCartFixture(t *testing.T) (*CartService, *repository.MemoryProducts, primitive.ObjectID) {
	t.Helper()
	store := repository.NewMemoryStore()
	products := repository.NewMemoryProducts(store)
	carts := repository.NewMemoryCarts(store)
	return NewCartService(carts, products), products, primitive.NewObjectID()
}

func seedCartProduct(t *testing.T, products *repository.MemoryProducts, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          "Test Product",
		Price:         price,
		Category:      models.CategoryOTC,
		StockQuantity: stock,
	}
	if err := products.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestGetCartEmptyByDefault(t *testing.T) {
	svc, _, userID := newCartFixture(t)

	cart, err := svc.GetCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetCart() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("new cart not empty: %+v", cart)
	}
}

func TestAddItemMergesLines(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	product := seedCartProduct(t, products, 50, 10)

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	cart, err := svc.AddItem(context.Background(), userID, product.ID, 3)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Errorf("items = %+v, want one line of 5", cart.Items)
	}
	if cart.TotalAmount != 250 {
		t.Errorf("totalAmount = %v, want 250", cart.TotalAmount)
	}
}

func TestAddItemStockLimit(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	product := seedCartProduct(t, products, 50, 3)

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err == nil {
		t.Error("AddItem() beyond stock succeeded, want error")
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, userID := newCartFixture(t)

	if _, err := svc.AddItem(context.Background(), userID, primitive.NewObjectID(), 1); err == nil {
		t.Error("AddItem() for unknown product succeeded, want error")
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	product := seedCartProduct(t, products, 40, 10)

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	cart, err := svc.UpdateItem(context.Background(), userID, product.ID, 4)
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if cart.Items[0].Quantity != 4 || cart.TotalAmount != 160 {
		t.Errorf("cart = %+v, want qty 4 total 160", cart)
	}

	// zero removes the line
	cart, err = svc.UpdateItem(context.Background(), userID, product.ID, 0)
	if err != nil {
		t.Fatalf("UpdateItem(0) error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("cart not empty after zero update: %+v", cart)
	}
}

func TestUpdateItemNotInCart(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	product := seedCartProduct(t, products, 40, 10)

	if _, err := svc.UpdateItem(context.Background(), userID, product.ID, 2); err == nil {
		t.Error("UpdateItem() for item not in cart succeeded, want error")
	}
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	first := seedCartProduct(t, products, 25, 10)
	second := seedCartProduct(t, products, 75, 10)

	_, _ = svc.AddItem(context.Background(), userID, first.ID, 1)
	_, _ = svc.AddItem(context.Background(), userID, second.ID, 1)

	cart, err := svc.RemoveItem(context.Background(), userID, first.ID)
	if err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != second.ID {
		t.Errorf("items = %+v, want only second product", cart.Items)
	}
	if cart.TotalAmount != 75 {
		t.Errorf("totalAmount = %v, want 75", cart.TotalAmount)
	}

	cart, err = svc.ClearCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("ClearCart() error = %v", err)
	}
	if !cart.IsEmpty() || cart.TotalAmount != 0 {
		t.Errorf("cart after clear = %+v, want empty", cart)
	}
}

func TestAddItemRejectsExpiredProduct(t *testing.T) {
	svc, products, userID := newCartFixture(t)
	product := seedCartProduct(t, products, 50, 10)
	product.ExpiryDate = time.Now().AddDate(0, 0, -1)
	if err := products.Update(context.Background(), product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 1); err == nil {
		t.Error("AddItem() for expired product succeeded, want error")
	}
}
