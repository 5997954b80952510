package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/service"
)

type trackingUpdateRequest struct {
	Status      models.OrderStatus `json:"status"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
}

// GetTracking handles GET /api/tracking/:orderId
func (h *Handlers) GetTracking(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, ok := h.objectIDParam(c, "orderId")
	if !ok {
		return
	}

	tracking, err := h.trackingService.GetTracking(c.Request.Context(), orderID, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Tracking retrieved", tracking)
}

// UpdateTracking handles PUT /api/tracking/:orderId (admin/pharmacy)
func (h *Handlers) UpdateTracking(c *gin.Context) {
	orderID, ok := h.objectIDParam(c, "orderId")
	if !ok {
		return
	}

	var req trackingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	order, err := h.trackingService.UpdateTracking(c.Request.Context(), orderID, service.TrackingUpdateInput{
		Status:      req.Status,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Tracking updated", order)
}
