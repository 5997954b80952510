package service

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/models"
)

// ChargeResult is the gateway's answer to a charge attempt.
type ChargeResult struct {
	Status        models.PaymentStatus
	TransactionID string
	CardLast4     string
}

// PaymentGateway abstracts the payment provider so a real gateway can
// replace the simulation without touching the order flow.
type PaymentGateway interface {
	Charge(ctx context.Context, method models.PaymentMethod, amount float64, details models.CardDetails) (ChargeResult, error)
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	twoDigitPattern   = regexp.MustCompile(`^\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidateCardDetails enforces the card input rules: 16-digit number,
// two-digit month and year, year not in the past, 3-4 digit CVV.
func ValidateCardDetails(details models.CardDetails, now time.Time) error {
	if !cardNumberPattern.MatchString(details.CardNumber) {
		return apperrors.NewValidationError("cardNumber", "Invalid card number - must be 16 digits")
	}

	if !twoDigitPattern.MatchString(details.ExpiryMonth) {
		return apperrors.NewValidationError("expiryMonth", "Invalid expiry month")
	}
	month, _ := strconv.Atoi(details.ExpiryMonth)
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("expiryMonth", "Invalid expiry month")
	}

	if !twoDigitPattern.MatchString(details.ExpiryYear) {
		return apperrors.NewValidationError("expiryYear", "Invalid expiry year")
	}
	year, _ := strconv.Atoi(details.ExpiryYear)
	if year < now.Year()%100 {
		return apperrors.NewValidationError("expiryYear", "Invalid expiry year")
	}

	if !cvvPattern.MatchString(details.CVV) {
		return apperrors.NewValidationError("cvv", "Invalid CVV")
	}
	return nil
}

// SimulatedGateway stands in for a real payment provider. Card charges
// succeed with probability 0.9, wallet with 0.95; COD is always created
// pending and settled later by explicit confirmation.
type SimulatedGateway struct {
	rand *rand.Rand
	now  func() time.Time
}

// NewSimulatedGateway creates a gateway with its own random source.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

// NewSimulatedGatewayWithSeed creates a deterministic gateway for tests.
func NewSimulatedGatewayWithSeed(seed int64) *SimulatedGateway {
	return &SimulatedGateway{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, method models.PaymentMethod, amount float64, details models.CardDetails) (ChargeResult, error) {
	switch method {
	case models.PaymentMethodCard:
		if err := ValidateCardDetails(details, g.now()); err != nil {
			return ChargeResult{}, err
		}
		status := models.PaymentStatusCompleted
		if g.rand.Float64() >= 0.9 {
			status = models.PaymentStatusFailed
		}
		return ChargeResult{
			Status:        status,
			TransactionID: transactionID("CARD"),
			CardLast4:     details.CardNumber[len(details.CardNumber)-4:],
		}, nil

	case models.PaymentMethodWallet:
		status := models.PaymentStatusCompleted
		if g.rand.Float64() >= 0.95 {
			status = models.PaymentStatusFailed
		}
		return ChargeResult{
			Status:        status,
			TransactionID: transactionID("WALLET"),
		}, nil

	case models.PaymentMethodCOD:
		return ChargeResult{
			Status:        models.PaymentStatusPending,
			TransactionID: transactionID("COD"),
		}, nil

	default:
		return ChargeResult{}, apperrors.NewValidationError("method", "Invalid payment method")
	}
}

func transactionID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
