package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/medikart/medikart-backend/internal/auth"
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/events"
	"github.com/medikart/medikart-backend/internal/handlers"
	"github.com/medikart/medikart-backend/internal/logging"
	"github.com/medikart/medikart-backend/internal/repository"
	"github.com/medikart/medikart-backend/internal/server"
	"github.com/medikart/medikart-backend/internal/service"
	"github.com/medikart/medikart-backend/internal/uploads"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger("medikart-backend")

	client, err := repository.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", logging.Fields{"error": err.Error()})
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	paymentRepo := repository.NewMongoPaymentRepository(db)
	prescriptionRepo := repository.NewMongoPrescriptionRepository(db)

	var productCache repository.ProductCache
	if cfg.Features.EnableProductCaching {
		cache := repository.NewRedisProductCache(cfg.Redis)
		defer cache.Close()
		productCache = cache
	}

	var publisher events.OrderEventPublisher = events.NoopPublisher{}
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	tokens := auth.NewTokenManager(cfg.JWT)
	gateway := service.NewSimulatedGateway()

	authService := service.NewAuthService(userRepo, tokens)
	catalogService := service.NewCatalogService(productRepo, productCache)
	cartService := service.NewCartService(cartRepo, productRepo)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, gateway)
	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		productRepo,
		prescriptionRepo,
		paymentService,
		publisher,
		cfg.TaxRate,
	)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, orderRepo, orderService)
	trackingService := service.NewTrackingService(orderRepo)

	uploader, err := uploads.NewDiskUploader(cfg.Upload)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", logging.Fields{"error": err.Error()})
	}

	h := handlers.NewHandlers(
		authService,
		catalogService,
		cartService,
		orderService,
		paymentService,
		prescriptionService,
		trackingService,
		uploader,
		cfg,
	)

	srv := server.New(cfg, h, tokens, userRepo)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                   cfg.Server.Port,
			"env":                    cfg.Env,
			"enable_product_caching": cfg.Features.EnableProductCaching,
			"enable_order_events":    cfg.Features.EnableOrderEvents,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}
