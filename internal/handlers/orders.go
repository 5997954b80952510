package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
	"github.com/medikart/medikart-backend/internal/service"
)

type createOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	CardDetails     models.CardDetails     `json:"cardDetails"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// CreateOrder handles POST /api/orders/create
func (h *Handlers) CreateOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), user.ID, service.CreateOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CardDetails:     req.CardDetails,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order created", result)
}

// GetUserOrders handles GET /api/orders
func (h *Handlers) GetUserOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orders, err := h.orderService.GetUserOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", orders)
}

// GetPrescriptionRequiredOrders handles GET /api/orders/prescription-required
func (h *Handlers) GetPrescriptionRequiredOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orders, err := h.orderService.GetPrescriptionRequiredOrders(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", orders)
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", order)
}

// CancelOrder handles PUT /api/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	var req cancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, user.ID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled", order)
}

// ListAllOrders handles GET /api/orders/all (admin)
func (h *Handlers) ListAllOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		SortBy:   c.Query("sortBy"),
		SortDesc: c.DefaultQuery("sortDir", "desc") == "desc",
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}
	if v := c.Query("prescriptionRequired"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.PrescriptionRequired = &b
		}
	}

	list, err := h.orderService.ListAllOrders(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", list)
}

// GetOrderDetails handles GET /api/orders/admin/:id (admin)
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	orderID, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.orderService.GetOrderDetails(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", details)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status (admin/pharmacy)
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}
