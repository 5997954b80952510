package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/logging"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondError(c *gin.Context, status int, message string, detail interface{}) {
	c.JSON(status, Response{
		Success:   false,
		Message:   message,
		Error:     detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleError maps service errors to HTTP responses. Unexpected errors
// are masked outside development.
func (h *Handlers) handleError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		var detail interface{}
		if appErr.Field != "" {
			detail = gin.H{"field": appErr.Field}
		}
		respondError(c, appErr.StatusCode, appErr.Message, detail)
		return
	}

	h.logger.Error("Unhandled error", logging.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	})

	message := "Something went wrong"
	if h.config.IsDevelopment() {
		message = err.Error()
	}
	respondError(c, http.StatusInternalServerError, message, nil)
}
