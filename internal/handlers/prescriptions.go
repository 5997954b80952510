package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/models"
)

type verifyPrescriptionRequest struct {
	Status models.VerificationStatus `json:"status"`
	Notes  string                    `json:"notes"`
}

// UploadPrescription handles POST /api/prescriptions/upload/:orderId
func (h *Handlers) UploadPrescription(c *gin.Context) {
	user := middleware.CurrentUser(c)

	orderID, ok := h.objectIDParam(c, "orderId")
	if !ok {
		return
	}

	file, err := c.FormFile("prescription")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Prescription file is required", gin.H{"field": "prescription"})
		return
	}

	imageURL, err := h.uploader.Save(file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	prescription, err := h.prescriptionService.Upload(c.Request.Context(), orderID, user.ID, imageURL)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Prescription uploaded", prescription)
}

// GetUserPrescriptions handles GET /api/prescriptions/my-prescriptions
func (h *Handlers) GetUserPrescriptions(c *gin.Context) {
	user := middleware.CurrentUser(c)

	prescriptions, err := h.prescriptionService.GetUserPrescriptions(c.Request.Context(), user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Prescriptions retrieved", prescriptions)
}

// GetPendingPrescriptions handles GET /api/prescriptions/pending (admin/pharmacy)
func (h *Handlers) GetPendingPrescriptions(c *gin.Context) {
	prescriptions, err := h.prescriptionService.GetPendingPrescriptions(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Pending prescriptions retrieved", prescriptions)
}

// GetOrderPrescription handles GET /api/prescriptions/order/:orderId
func (h *Handlers) GetOrderPrescription(c *gin.Context) {
	orderID, ok := h.objectIDParam(c, "orderId")
	if !ok {
		return
	}

	prescription, err := h.prescriptionService.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Prescription retrieved", prescription)
}

// VerifyPrescription handles PUT /api/prescriptions/:id/verify (admin/pharmacy)
func (h *Handlers) VerifyPrescription(c *gin.Context) {
	verifier := middleware.CurrentUser(c)

	prescriptionID, ok := h.objectIDParam(c, "id")
	if !ok {
		return
	}

	var req verifyPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	prescription, err := h.prescriptionService.Verify(c.Request.Context(), prescriptionID, verifier.ID, req.Status, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Prescription verified", prescription)
}
