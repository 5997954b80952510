package service

import (
	"testing"

	"github.com/medikart/medikart-backend/internal/models"
)

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Street:  "42 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		ZipCode: "560001",
	}
}

func TestValidateShippingAddress(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.ShippingAddress)
		wantErr bool
	}{
		{"valid address", func(a *models.ShippingAddress) {}, false},
		{"street too short", func(a *models.ShippingAddress) { a.Street = "Rd" }, true},
		{"city with digits", func(a *models.ShippingAddress) { a.City = "City9" }, true},
		{"city too short", func(a *models.ShippingAddress) { a.City = "X" }, true},
		{"state with punctuation", func(a *models.ShippingAddress) { a.State = "Karnataka!" }, true},
		{"zip too short", func(a *models.ShippingAddress) { a.ZipCode = "56001" }, true},
		{"zip with letters", func(a *models.ShippingAddress) { a.ZipCode = "56000a" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)
			err := ValidateShippingAddress(addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateShippingAddress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalculateShippingFee(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2},
		{Quantity: 1},
	}

	tests := []struct {
		state string
		want  float64
	}{
		{"Delhi", 80},       // 50 base + 30 items + 0 north
		{"Maharashtra", 100}, // + 20 west
		{"Karnataka", 110},   // + 30 south
		{"West Bengal", 120}, // + 40 east
		{"Kerala", 130},      // + 50 other
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			addr := validAddress()
			addr.State = tt.state
			if got := CalculateShippingFee(items, addr); got != tt.want {
				t.Errorf("CalculateShippingFee(%s) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestCalculateShippingFeeCountsQuantities(t *testing.T) {
	addr := validAddress()
	addr.State = "Delhi"

	one := CalculateShippingFee([]models.OrderItem{{Quantity: 1}}, addr)
	five := CalculateShippingFee([]models.OrderItem{{Quantity: 5}}, addr)
	if five-one != 40 {
		t.Errorf("per-item fee delta = %v, want 40", five-one)
	}
}
