package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/medikart/medikart-backend/internal/models"
)

func validCard() models.CardDetails {
	return models.CardDetails{
		CardNumber:  "4111111111111111",
		ExpiryMonth: "12",
		ExpiryYear:  "30",
		CVV:         "123",
	}
}

func TestValidateCardDetails(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*models.CardDetails)
		wantErr bool
	}{
		{"valid card", func(d *models.CardDetails) {}, false},
		{"four digit cvv", func(d *models.CardDetails) { d.CVV = "1234" }, false},
		{"short number", func(d *models.CardDetails) { d.CardNumber = "411111111111111" }, true},
		{"letters in number", func(d *models.CardDetails) { d.CardNumber = "4111x11111111111" }, true},
		{"month zero", func(d *models.CardDetails) { d.ExpiryMonth = "00" }, true},
		{"month thirteen", func(d *models.CardDetails) { d.ExpiryMonth = "13" }, true},
		{"single digit month", func(d *models.CardDetails) { d.ExpiryMonth = "1" }, true},
		{"expired year", func(d *models.CardDetails) { d.ExpiryYear = "25" }, true},
		{"current year ok", func(d *models.CardDetails) { d.ExpiryYear = "26" }, false},
		{"two digit cvv", func(d *models.CardDetails) { d.CVV = "12" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validCard()
			tt.mutate(&details)
			err := ValidateCardDetails(details, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCardDetails() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimulatedGatewayCOD(t *testing.T) {
	g := NewSimulatedGatewayWithSeed(1)

	result, err := g.Charge(context.Background(), models.PaymentMethodCOD, 100, models.CardDetails{})
	if err != nil {
		t.Fatalf("Charge() error = %v", err)
	}
	if result.Status != models.PaymentStatusPending {
		t.Errorf("COD status = %s, want pending", result.Status)
	}
	if !strings.HasPrefix(result.TransactionID, "COD_") {
		t.Errorf("transaction id = %s, want COD_ prefix", result.TransactionID)
	}
}

func TestSimulatedGatewayCard(t *testing.T) {
	g := NewSimulatedGatewayWithSeed(1)

	result, err := g.Charge(context.Background(), models.PaymentMethodCard, 100, validCard())
	if err != nil {
		t.Fatalf("Charge() error = %v", err)
	}
	if result.Status != models.PaymentStatusCompleted && result.Status != models.PaymentStatusFailed {
		t.Errorf("card status = %s, want completed or failed", result.Status)
	}
	if !strings.HasPrefix(result.TransactionID, "CARD_") {
		t.Errorf("transaction id = %s, want CARD_ prefix", result.TransactionID)
	}
	if result.CardLast4 != "1111" {
		t.Errorf("CardLast4 = %s, want 1111", result.CardLast4)
	}
}

func TestSimulatedGatewayCardRejectsInvalidDetails(t *testing.T) {
	g := NewSimulatedGatewayWithSeed(1)

	details := validCard()
	details.CardNumber = "1234"
	if _, err := g.Charge(context.Background(), models.PaymentMethodCard, 100, details); err == nil {
		t.Error("Charge() with invalid card details succeeded, want error")
	}
}

func TestSimulatedGatewayUnknownMethod(t *testing.T) {
	g := NewSimulatedGatewayWithSeed(1)

	if _, err := g.Charge(context.Background(), models.PaymentMethod("upi"), 100, models.CardDetails{}); err == nil {
		t.Error("Charge() with unknown method succeeded, want error")
	}
}
