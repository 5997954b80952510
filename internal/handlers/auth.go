package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/service"
)

type registerRequest struct {
	Name     string                 `json:"name"`
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Phone    string                 `json:"phone"`
	Address  models.ShippingAddress `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Registration successful", result)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", result)
}
