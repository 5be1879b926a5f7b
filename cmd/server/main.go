package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"template-marketplace/config"
	"template-marketplace/internal/api"
	"template-marketplace/internal/broker"
	"template-marketplace/internal/gateway"
	"template-marketplace/internal/redisclient"
	"template-marketplace/internal/service"
	"template-marketplace/internal/store"
	"template-marketplace/internal/util"
	"template-marketplace/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting template marketplace service")

	tp, err := util.InitTracer("template-marketplace", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPurchases)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	// The gateway stays nil when credentials are absent; checkout then
	// fails with a gateway-unavailable error instead of crashing here.
	var paymentGateway gateway.Gateway
	if cfg.Razorpay.Configured() {
		paymentGateway = gateway.NewRazorpayClient(
			cfg.Razorpay.KeyID,
			cfg.Razorpay.KeySecret,
			time.Duration(cfg.Business.GatewayTimeoutSeconds)*time.Second,
		)
		log.Println("Payment gateway configured")
	} else {
		log.Println("Payment gateway NOT configured; checkout will be unavailable")
	}

	catalogService := service.NewCatalogService(db, redisClient, eventPublisher)
	cartService := service.NewCartService(db)
	checkoutService := service.NewCheckoutService(db, paymentGateway, redisClient, eventPublisher,
		cfg.Razorpay.Currency, time.Duration(cfg.Business.GatewayTimeoutSeconds)*time.Second)
	purchaseService := service.NewPurchaseService(db)
	reviewService := service.NewReviewService(db)
	wishlistService := service.NewWishlistService(db)
	profileService := service.NewProfileService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	purchaseConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPurchases, cfg.Kafka.ConsumerGroup)
	statsWorker := worker.NewProfileStatsWorker(purchaseConsumer, profileService)
	go func() {
		if err := statsWorker.Start(workerCtx); err != nil {
			log.Printf("Profile stats worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(catalogService, cartService, checkoutService,
		purchaseService, reviewService, wishlistService, profileService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	statsWorker.Stop()

	log.Println("Server exited")
}
