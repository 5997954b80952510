package service

import "math"

// Round2 rounds a monetary amount to two decimal places. Every stored
// monetary field goes through this.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// OrderTotals is the pricing breakdown for an order.
type OrderTotals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	ShippingFee float64 `json:"shippingFee"`
	Total       float64 `json:"total"`
}

// CalculateTax computes tax on a subtotal at the configured rate.
func CalculateTax(subtotal, taxRate float64) float64 {
	return Round2(subtotal * taxRate)
}

// CalculateOrderTotals computes the full breakdown. The invariant
// Total == Round2(Subtotal + ShippingFee + Tax) holds for every order.
func CalculateOrderTotals(subtotal, shippingFee, taxRate float64) OrderTotals {
	tax := CalculateTax(subtotal, taxRate)
	return OrderTotals{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shippingFee,
		Total:       Round2(subtotal + shippingFee + tax),
	}
}
