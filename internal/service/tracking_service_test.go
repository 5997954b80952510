package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/models"
)

func newTrackedOrder(t *testing.T) (*orderFixture, *TrackingService, *models.Order) {
	t.Helper()
	f := newOrderFixture(t, &stubGateway{status: models.PaymentStatusCompleted})
	product := f.seedProduct(t, "First Aid Kit", 450, 10, false)
	f.seedCart(t, models.CartItem{ProductID: product.ID, Quantity: 1})

	result, err := f.service.CreateOrder(context.Background(), f.userID, cardInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	return f, NewTrackingService(f.orders), result.Order
}

func TestUpdateTrackingAppendsHistory(t *testing.T) {
	f, tracking, order := newTrackedOrder(t)

	updated, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{
		Status:      models.OrderStatusPacked,
		Location:    "Bengaluru warehouse",
		Description: "Packed and ready for dispatch",
	})
	if err != nil {
		t.Fatalf("UpdateTracking() error = %v", err)
	}

	if len(updated.Tracking.Updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updated.Tracking.Updates))
	}
	entry := updated.Tracking.Updates[0]
	if entry.Status != models.OrderStatusPacked || entry.Location != "Bengaluru warehouse" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Error("entry timestamp not set")
	}
	if updated.Tracking.CurrentStatus != models.OrderStatusPacked {
		t.Errorf("currentStatus = %s, want packed", updated.Tracking.CurrentStatus)
	}
	if updated.Tracking.CurrentLocation != "Bengaluru warehouse" {
		t.Errorf("currentLocation = %q", updated.Tracking.CurrentLocation)
	}
	if updated.OrderStatus != models.OrderStatusPacked {
		t.Errorf("orderStatus = %s, want packed (mirrored)", updated.OrderStatus)
	}

	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	if len(stored.Tracking.Updates) != 1 {
		t.Errorf("stored updates = %d, want 1", len(stored.Tracking.Updates))
	}
}

func TestUpdateTrackingFirstShipment(t *testing.T) {
	_, tracking, order := newTrackedOrder(t)

	before := time.Now()
	updated, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{
		Status:   models.OrderStatusShipped,
		Location: "Hub Mumbai",
	})
	if err != nil {
		t.Fatalf("UpdateTracking() error = %v", err)
	}

	if !strings.HasPrefix(updated.Tracking.TrackingNumber, "TRK") {
		t.Errorf("trackingNumber = %q, want TRK prefix", updated.Tracking.TrackingNumber)
	}
	if updated.Tracking.EstimatedDelivery == nil {
		t.Fatal("estimatedDelivery not set")
	}
	expected := before.AddDate(0, 0, 3)
	if updated.Tracking.EstimatedDelivery.Before(expected.Add(-time.Minute)) ||
		updated.Tracking.EstimatedDelivery.After(expected.Add(time.Minute)) {
		t.Errorf("estimatedDelivery = %v, want ~%v", updated.Tracking.EstimatedDelivery, expected)
	}

	// second shipped update keeps the original number and estimate
	number := updated.Tracking.TrackingNumber
	estimate := *updated.Tracking.EstimatedDelivery
	again, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{
		Status:   models.OrderStatusShipped,
		Location: "Hub Pune",
	})
	if err != nil {
		t.Fatalf("UpdateTracking() error = %v", err)
	}
	if again.Tracking.TrackingNumber != number {
		t.Errorf("trackingNumber changed: %q -> %q", number, again.Tracking.TrackingNumber)
	}
	if !again.Tracking.EstimatedDelivery.Equal(estimate) {
		t.Errorf("estimatedDelivery changed: %v -> %v", estimate, again.Tracking.EstimatedDelivery)
	}
	if len(again.Tracking.Updates) != 2 {
		t.Errorf("updates = %d, want 2", len(again.Tracking.Updates))
	}
}

func TestGetTrackingScopedToOwner(t *testing.T) {
	f, tracking, order := newTrackedOrder(t)

	got, err := tracking.GetTracking(context.Background(), order.ID, f.userID)
	if err != nil {
		t.Fatalf("GetTracking() error = %v", err)
	}
	if got.CurrentStatus != models.OrderStatusPending {
		t.Errorf("currentStatus = %s, want pending", got.CurrentStatus)
	}

	if _, err := tracking.GetTracking(context.Background(), order.ID, primitive.NewObjectID()); err == nil {
		t.Error("GetTracking() by other user succeeded, want error")
	}
}

func TestUpdateTrackingTerminalOrder(t *testing.T) {
	f, tracking, order := newTrackedOrder(t)

	if _, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{
		Status: models.OrderStatusDelivered,
	}); err != nil {
		t.Fatalf("UpdateTracking() error = %v", err)
	}

	if _, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{
		Status:   models.OrderStatusShipped,
		Location: "Hub Chennai",
	}); err == nil {
		t.Error("UpdateTracking() on delivered order succeeded, want error")
	}

	stored, _ := f.orders.GetByID(context.Background(), order.ID)
	if stored.OrderStatus != models.OrderStatusDelivered {
		t.Errorf("orderStatus = %s, want delivered", stored.OrderStatus)
	}
	if len(stored.Tracking.Updates) != 1 {
		t.Errorf("updates = %d, want 1", len(stored.Tracking.Updates))
	}
}

func TestUpdateTrackingInvalidStatus(t *testing.T) {
	_, tracking, order := newTrackedOrder(t)

	if _, err := tracking.UpdateTracking(context.Background(), order.ID, TrackingUpdateInput{Status: "lost"}); err == nil {
		t.Error("UpdateTracking() with unknown status succeeded, want error")
	}
}
