package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medikart/medikart-backend/internal/auth"
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/handlers"
	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	httpSrv  *http.Server
}

func New(
	cfg *config.Config,
	h *handlers.Handlers,
	tokens *auth.TokenManager,
	users repository.UserRepository,
) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes(tokens, users)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(tokens *auth.TokenManager, users repository.UserRepository) {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.Static(s.config.Upload.BaseURL, s.config.Upload.Dir)

	authn := middleware.Authenticate(tokens, users)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RolePharmacy)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api := s.router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", s.handlers.Register)
		authRoutes.POST("/login", s.handlers.Login)
	}

	products := api.Group("/products")
	{
		products.GET("", s.handlers.ListProducts)
		products.GET("/search", s.handlers.SearchProducts)
		products.GET("/expiry/nearly-expired", authn, admin, s.handlers.NearlyExpiredProducts)
		products.DELETE("/expiry/remove-expired", authn, admin, s.handlers.RemoveExpiredProducts)
		products.GET("/:id", s.handlers.GetProduct)
		products.POST("", authn, admin, s.handlers.CreateProduct)
		products.PUT("/:id", authn, admin, s.handlers.UpdateProduct)
		products.DELETE("/:id", authn, admin, s.handlers.DeleteProduct)
	}

	cart := api.Group("/cart", authn)
	{
		cart.GET("", s.handlers.GetCart)
		cart.POST("/add", s.handlers.AddToCart)
		cart.PUT("/update", s.handlers.UpdateCartItem)
		cart.DELETE("/remove/:productId", s.handlers.RemoveFromCart)
		cart.DELETE("/clear", s.handlers.ClearCart)
	}

	orders := api.Group("/orders", authn)
	{
		orders.POST("/create", s.handlers.CreateOrder)
		orders.GET("", s.handlers.GetUserOrders)
		orders.GET("/prescription-required", s.handlers.GetPrescriptionRequiredOrders)
		orders.GET("/all", staff, s.handlers.ListAllOrders)
		orders.GET("/admin/:id", staff, s.handlers.GetOrderDetails)
		orders.GET("/:id", s.handlers.GetOrder)
		orders.PUT("/:id/cancel", s.handlers.CancelOrder)
		orders.PUT("/:id/status", staff, s.handlers.UpdateOrderStatus)
	}

	payments := api.Group("/payments", authn)
	{
		payments.POST("/process", s.handlers.ProcessPayment)
		payments.GET("/order/:orderId", s.handlers.GetOrderPayments)
		payments.POST("/cod/:paymentId/confirm", staff, s.handlers.ConfirmCODPayment)
		payments.POST("/:paymentId/refund", staff, s.handlers.ProcessRefund)
	}

	prescriptions := api.Group("/prescriptions", authn)
	{
		prescriptions.POST("/upload/:orderId", s.handlers.UploadPrescription)
		prescriptions.GET("/my-prescriptions", s.handlers.GetUserPrescriptions)
		prescriptions.GET("/pending", staff, s.handlers.GetPendingPrescriptions)
		prescriptions.GET("/order/:orderId", staff, s.handlers.GetOrderPrescription)
		prescriptions.PUT("/:id/verify", staff, s.handlers.VerifyPrescription)
	}

	tracking := api.Group("/tracking", authn)
	{
		tracking.GET("/:orderId", s.handlers.GetTracking)
		tracking.PUT("/:orderId", staff, s.handlers.UpdateTracking)
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
