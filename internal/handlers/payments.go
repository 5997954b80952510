package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/models"
)

type processPaymentRequest struct {
	OrderID     string               `json:"orderId"`
	Method      models.PaymentMethod `json:"method"`
	CardDetails models.CardDetails   `json:"cardDetails"`
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// ProcessPayment handles POST /api/payments/process
func (h *Handlers) ProcessPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order id", gin.H{"field": "orderId"})
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), orderID, user.ID, req.Method, req.CardDetails)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment processed", payment)
}

// GetOrderPayments handles GET /api/payments/order/:orderId
func (h *Handlers) GetOrderPayments(c *gin.Context) {
	orderID, ok := h.objectIDParam(c, "orderId")
	if !ok {
		return
	}

	payments, err := h.paymentService.GetPaymentsByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payments retrieved", payments)
}

// ConfirmCODPayment handles POST /api/payments/cod/:paymentId/confirm (admin/pharmacy)
func (h *Handlers) ConfirmCODPayment(c *gin.Context) {
	paymentID, ok := h.objectIDParam(c, "paymentId")
	if !ok {
		return
	}

	payment, err := h.paymentService.ConfirmCODPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "COD payment confirmed", payment)
}

// ProcessRefund handles POST /api/payments/:paymentId/refund (admin/pharmacy)
func (h *Handlers) ProcessRefund(c *gin.Context) {
	paymentID, ok := h.objectIDParam(c, "paymentId")
	if !ok {
		return
	}

	var req refundRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "Requested by customer"
	}

	payment, err := h.paymentService.ProcessRefund(c.Request.Context(), paymentID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Refund processed", payment)
}
