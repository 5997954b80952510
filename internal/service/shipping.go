package service

import (
	"regexp"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/models"
)

var (
	cityStatePattern = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)
	zipCodePattern   = regexp.MustCompile(`^\d{6}$`)
)

const baseShippingFee = 50.0
const perItemFee = 10.0

// zone fees by delivery region, keyed off the shipping state.
var deliveryZones = map[string]string{
	"Delhi":       "north",
	"Maharashtra": "west",
	"Karnataka":   "south",
	"West Bengal": "east",
}

var zoneFees = map[string]float64{
	"north": 0,
	"south": 30,
	"east":  40,
	"west":  20,
	"other": 50,
}

// ValidateShippingAddress checks each address field independently and
// returns a ValidationError on the first failure.
func ValidateShippingAddress(addr models.ShippingAddress) error {
	if len(addr.Street) < 5 {
		return apperrors.NewValidationError("street", "Invalid street address")
	}
	if !cityStatePattern.MatchString(addr.City) {
		return apperrors.NewValidationError("city", "Invalid city name")
	}
	if !cityStatePattern.MatchString(addr.State) {
		return apperrors.NewValidationError("state", "Invalid state name")
	}
	if !zipCodePattern.MatchString(addr.ZipCode) {
		return apperrors.NewValidationError("zipCode", "Invalid ZIP code - must be 6 digits")
	}
	return nil
}

// CalculateShippingFee applies the base + per-item + zone heuristic and
// rounds to a whole amount.
func CalculateShippingFee(items []models.OrderItem, addr models.ShippingAddress) float64 {
	fee := baseShippingFee

	totalItems := 0
	for _, item := range items {
		totalItems += item.Quantity
	}
	fee += perItemFee * float64(totalItems)

	zone, ok := deliveryZones[addr.State]
	if !ok {
		zone = "other"
	}
	fee += zoneFees[zone]

	return Round2(fee)
}
