package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/events"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// stubGateway returns a fixed outcome, making checkout deterministic.
type stubGateway struct {
	status models.PaymentStatus
	err    error
}

func (g *stubGateway) Charge(ctx context.Context, method models.PaymentMethod, amount float64, details models.CardDetails) (ChargeResult, error) {
	if g.err != nil {
		return ChargeResult{}, g.err
	}
	return ChargeResult{
		Status:        g.status,
		TransactionID: "TEST_txn",
	}, nil
}

type orderFixture struct {
	store     *repository.MemoryStore
	orders    *repository.MemoryOrders
	carts     *repository.MemoryCarts
	products  *repository.MemoryProducts
	payments  *repository.MemoryPayments
	publisher *events.MockPublisher
	service   *OrderService
	userID    primitive.ObjectID
}

func newOrderFixture(t *testing.T, gateway PaymentGateway) *orderFixture {
	t.Helper()

	store := repository.NewMemoryStore()
	orders := repository.NewMemoryOrders(store)
	carts := repository.NewMemoryCarts(store)
	products := repository.NewMemoryProducts(store)
	payments := repository.NewMemoryPayments(store)
	prescriptions := repository.NewMemoryPrescriptions(store)
	publisher := events.NewMockPublisher()

	paymentService := NewPaymentService(payments, orders, gateway)
	orderService := NewOrderService(orders, carts, products, prescriptions, paymentService, publisher, 0.10)

	return &orderFixture{
		store:     store,
		orders:    orders,
		carts:     carts,
		products:  products,
		payments:  payments,
		publisher: publisher,
		service:   orderService,
		userID:    primitive.NewObjectID(),
	}
}

func (f *orderFixture) seedProduct(t *testing.T, name string, price float64, stock int, requiresPrescription bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:                 name,
		Price:                price,
		Category:             models.CategoryOTC,
		StockQuantity:        stock,
		RequiresPrescription: requiresPrescription,
		ExpiryDate:           time.Now().AddDate(2, 0, 0),
	}
	if requiresPrescription {
		product.Category = models.CategoryPrescription
	}
	if err := f.products.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *orderFixture) seedCart(t *testing.T, items ...models.CartItem) *models.Cart {
	t.Helper()
	cart := &models.Cart{
		UserID: f.userID,
		Items:  items,
	}
	if err := f.carts.Save(context.Background(), cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return cart
}

func cardInput() CreateOrderInput {
	return CreateOrderInput{
		ShippingAddress: models.ShippingAddress{
			Street:  "42 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			ZipCode: "560001",
		},
		PaymentMethod: models.PaymentMethodCard,
		CardDetails: models.CardDetails{
			CardNumber:  "4111111111111111",
			ExpiryMonth: "12",
			ExpiryYear:  "30",
			CVV:         "123",
		},
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Paracetamol 500mg", 50, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 2})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order := result.Order
	if order.OrderStatus != models.OrderStatusPending {
		t.Errorf("orderStatus = %s, want pending", order.OrderStatus)
	}
	if order.PrescriptionStatus != models.PrescriptionStateNotRequired {
		t.Errorf("prescriptionStatus = %s, want not_required", order.PrescriptionStatus)
	}
	if result.RequiresPrescription {
		t.Error("RequiresPrescription = true, want false")
	}

	// subtotal 100, shipping 50+20+30 (Karnataka), tax 10
	if order.Tax != 10 {
		t.Errorf("tax = %v, want 10", order.Tax)
	}
	if order.ShippingFee != 100 {
		t.Errorf("shippingFee = %v, want 100", order.ShippingFee)
	}
	if order.TotalAmount != 210 {
		t.Errorf("totalAmount = %v, want 210", order.TotalAmount)
	}

	if len(order.Items) != 1 || order.Items[0].Price != 50 || order.Items[0].Name != "Paracetamol 500mg" {
		t.Errorf("items not frozen correctly: %+v", order.Items)
	}

	updated, _ := f.products.GetByID(context.Background(), product.ID)
	if updated.StockQuantity != 8 {
		t.Errorf("stock = %d, want 8", updated.StockQuantity)
	}

	if _, err := f.carts.GetByUserID(context.Background(), f.userID); !apperrors.IsNotFound(err) {
		t.Errorf("cart still exists after checkout, err = %v", err)
	}

	if result.Payment == nil || result.Payment.Status != models.PaymentStatusCompleted {
		t.Errorf("payment = %+v, want completed", result.Payment)
	}
	if order.PaymentStatus != models.PaymentStatusCompleted {
		t.Errorf("order paymentStatus = %s, want completed", order.PaymentStatus)
	}

	if len(f.publisher.Events) != 1 || f.publisher.Events[0].Type != events.EventTypeOrderCreated {
		t.Errorf("published events = %+v, want one order.created", f.publisher.Events)
	}
}

func TestCreateOrderFrozenPriceIgnoresLaterChanges(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Vitamin C", 80, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	product.Price = 999
	if err := f.products.Update(context.Background(), product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, _ := f.orders.GetByID(context.Background(), result.Order.ID)
	if stored.Items[0].Price != 80 {
		t.Errorf("frozen price = %v, want 80", stored.Items[0].Price)
	}
}

func TestCreateOrderPrescriptionRequired(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	otc := f.seedProduct(t, "Bandages", 30, 10, false)
	rx := f.seedProduct(t, "Amoxicillin", 120, 5, true)
	f.seedCart(t,
		models.CartItem{ProductID: otc.ID, Quantity: 1},
		models.CartItem{ProductID: rx.ID, Quantity: 1},
	)

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if result.Order.OrderStatus != models.OrderStatusAwaitingPrescription {
		t.Errorf("orderStatus = %s, want awaiting_prescription", result.Order.OrderStatus)
	}
	if result.Order.PrescriptionStatus != models.PrescriptionStatePending {
		t.Errorf("prescriptionStatus = %s, want pending", result.Order.PrescriptionStatus)
	}
	if !result.RequiresPrescription {
		t.Error("RequiresPrescription = false, want true")
	}

	// stock decrement is deferred until admin confirmation
	for _, p := range []*models.Product{otc, rx} {
		stored, _ := f.products.GetByID(context.Background(), p.ID)
		if stored.StockQuantity != p.StockQuantity {
			t.Errorf("stock for %s = %d, want %d (deferred)", p.Name, stored.StockQuantity, p.StockQuantity)
		}
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})

	_, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.StatusCode != 400 {
		t.Errorf("CreateOrder() with empty cart error = %v, want validation error", err)
	}
}

func TestCreateOrderInvalidMethod(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Gauze", 20, 5, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	input := cardInput()
	input.PaymentMethod = "crypto"
	if _, err := f.service.CreateOrder(context.Background(), f.userID, input); err == nil {
		t.Error("CreateOrder() with invalid method succeeded, want error")
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Thermometer", 200, 1, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 3})

	_, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err == nil {
		t.Fatal("CreateOrder() with insufficient stock succeeded, want error")
	}

	// no partial state: no order was persisted, cart survives
	orders, total, _ := f.orders.List(context.Background(), repository.OrderFilter{})
	if total != 0 || len(orders) != 0 {
		t.Errorf("orders persisted = %d, want 0", total)
	}
	if _, err := f.carts.GetByUserID(context.Background(), f.userID); err != nil {
		t.Errorf("cart missing after failed validation: %v", err)
	}
}

func TestCreateOrderPaymentException(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{err: errors.New("gateway unreachable")})
	product := f.seedProduct(t, "Syrup", 90, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	_, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err == nil {
		t.Fatal("CreateOrder() succeeded despite gateway error")
	}

	// the order persists in a failed-payment state and the cart is kept
	orders, total, _ := f.orders.List(context.Background(), repository.OrderFilter{})
	if total != 1 {
		t.Fatalf("orders persisted = %d, want 1", total)
	}
	if orders[0].PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("paymentStatus = %s, want failed", orders[0].PaymentStatus)
	}
	if _, err := f.carts.GetByUserID(context.Background(), f.userID); err != nil {
		t.Errorf("cart missing after gateway exception: %v", err)
	}

	stored, _ := f.products.GetByID(context.Background(), product.ID)
	if stored.StockQuantity != 10 {
		t.Errorf("stock = %d, want 10", stored.StockQuantity)
	}
}

func TestCreateOrderPaymentDeclined(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusFailed})
	product := f.seedProduct(t, "Inhaler", 350, 4, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if result.Order.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("paymentStatus = %s, want failed", result.Order.PaymentStatus)
	}

	// declined charge still clears the cart, but never touches stock
	if _, err := f.carts.GetByUserID(context.Background(), f.userID); !apperrors.IsNotFound(err) {
		t.Errorf("cart still exists after declined payment, err = %v", err)
	}
	stored, _ := f.products.GetByID(context.Background(), product.ID)
	if stored.StockQuantity != 4 {
		t.Errorf("stock = %d, want 4", stored.StockQuantity)
	}
}

func TestCancelOrderPending(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusFailed})
	product := f.seedProduct(t, "Mask Pack", 150, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order, err := f.service.CancelOrder(context.Background(), result.Order.ID, f.userID, "changed my mind")
	if err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}
	if order.OrderStatus != models.OrderStatusCancelled {
		t.Errorf("orderStatus = %s, want cancelled", order.OrderStatus)
	}
	if order.CancellationReason != "changed my mind" {
		t.Errorf("cancellationReason = %q", order.CancellationReason)
	}
}

func TestCancelOrderRestoresStockAndRefunds(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Glucose Monitor", 1200, 5, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 2})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	// move to confirmed so cancellation must restore stock
	if _, err := f.service.UpdateOrderStatus(context.Background(), result.Order.ID, models.OrderStatusConfirmed); err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}

	order, err := f.service.CancelOrder(context.Background(), result.Order.ID, f.userID, "")
	if err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}

	stored, _ := f.products.GetByID(context.Background(), product.ID)
	if stored.StockQuantity != 5 {
		t.Errorf("stock = %d, want 5 after restore", stored.StockQuantity)
	}

	payment, _ := f.payments.GetByOrderID(context.Background(), order.ID)
	if payment.Status != models.PaymentStatusRefunded {
		t.Errorf("payment status = %s, want refunded", payment.Status)
	}
	if payment.RefundDetails == nil {
		t.Fatal("refund details missing")
	}
	if order.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("order paymentStatus = %s, want refunded", order.PaymentStatus)
	}
}

func TestCancelOrderTerminal(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Cough Drops", 40, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, _ := f.service.CreateOrder(context.Background(), f.userID, cardInput())

	order, _ := f.orders.GetByID(context.Background(), result.Order.ID)
	order.OrderStatus = models.OrderStatusDelivered
	_ = f.orders.Update(context.Background(), order)

	if _, err := f.service.CancelOrder(context.Background(), order.ID, f.userID, ""); err == nil {
		t.Error("CancelOrder() on delivered order succeeded, want error")
	}
}

func TestCancelOrderScopedToOwner(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Eye Drops", 60, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, _ := f.service.CreateOrder(context.Background(), f.userID, cardInput())

	otherUser := primitive.NewObjectID()
	if _, err := f.service.CancelOrder(context.Background(), result.Order.ID, otherUser, ""); !apperrors.IsNotFound(err) {
		t.Errorf("CancelOrder() by other user error = %v, want not found", err)
	}
}

func TestUpdateOrderStatusConfirmGuard(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	rx := f.seedProduct(t, "Insulin", 800, 6, true)
	f.seedCart(t, models.CartItem{ProductID: rx.ID, Quantity: 2})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	// cannot confirm before the prescription is approved
	if _, err := f.service.UpdateOrderStatus(context.Background(), result.Order.ID, models.OrderStatusConfirmed); err == nil {
		t.Fatal("UpdateOrderStatus(confirmed) succeeded without approval")
	}

	order, _ := f.orders.GetByID(context.Background(), result.Order.ID)
	order.PrescriptionStatus = models.PrescriptionStateApproved
	order.OrderStatus = models.OrderStatusProcessing
	_ = f.orders.Update(context.Background(), order)

	updated, err := f.service.UpdateOrderStatus(context.Background(), order.ID, models.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}
	if updated.OrderStatus != models.OrderStatusConfirmed {
		t.Errorf("orderStatus = %s, want confirmed", updated.OrderStatus)
	}

	// the deferred decrement fires on confirmation
	stored, _ := f.products.GetByID(context.Background(), rx.ID)
	if stored.StockQuantity != 4 {
		t.Errorf("stock = %d, want 4 after deferred decrement", stored.StockQuantity)
	}
}

func TestUpdateOrderStatusTerminalGuard(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "Antiseptic", 70, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, _ := f.service.CreateOrder(context.Background(), f.userID, cardInput())

	if _, err := f.service.CancelOrder(context.Background(), result.Order.ID, f.userID, ""); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}
	if _, err := f.service.UpdateOrderStatus(context.Background(), result.Order.ID, models.OrderStatusPacked); err == nil {
		t.Error("UpdateOrderStatus() on cancelled order succeeded, want error")
	}
}

func TestUpdateOrderStatusInvalidValue(t *testing.T) {
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})

	if _, err := f.service.UpdateOrderStatus(context.Background(), primitive.NewObjectID(), "teleported"); err == nil {
		t.Error("UpdateOrderStatus() with unknown status succeeded, want error")
	}
}
