package handlers

import (
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/service"
	"github.com/medikart/medikart-backend/internal/uploads"
)

// Handlers holds all HTTP handlers for the pharmacy backend.
type Handlers struct {
	authService         *service.AuthService
	catalogService      *service.CatalogService
	cartService         *service.CartService
	orderService        *service.OrderService
	paymentService      *service.PaymentService
	prescriptionService *service.PrescriptionService
	trackingService     *service.TrackingService
	uploader            uploads.Uploader
	config              *config.Config
	logger              *logging.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	authService *service.AuthService,
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	paymentService *service.PaymentService,
	prescriptionService *service.PrescriptionService,
	trackingService *service.TrackingService,
	uploader uploads.Uploader,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:         authService,
		catalogService:      catalogService,
		cartService:         cartService,
		orderService:        orderService,
		paymentService:      paymentService,
		prescriptionService: prescriptionService,
		trackingService:     trackingService,
		uploader:            uploader,
		config:              cfg,
		logger:              logging.NewLogger("handlers"),
	}
}
