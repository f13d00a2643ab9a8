package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"brokerage-api/internal/clients"
	"brokerage-api/internal/config"
	"brokerage-api/internal/handlers"
	"brokerage-api/internal/ledger"
	"brokerage-api/internal/messaging"
	"brokerage-api/internal/middleware"
	"brokerage-api/internal/monitoring"
	"brokerage-api/internal/repositories"
	"brokerage-api/internal/routes"
	"brokerage-api/internal/scheduler"
	"brokerage-api/pkg/cache"
	"brokerage-api/pkg/database"
	"brokerage-api/pkg/logger"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Logging)
	logrus.Info("Starting Brokerage API service...")

	logrus.Info("Connecting to MongoDB...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	logrus.Info("Connecting to Redis...")
	redisCache, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	logrus.Info("Setting up RabbitMQ messaging...")
	publisher, err := messaging.NewPublisher(&messaging.MessagingConfig{
		URL:           cfg.RabbitMQ.URL,
		Exchange:      cfg.RabbitMQ.Exchange,
		RetryAttempts: cfg.RabbitMQ.RetryAttempts,
		RetryDelay:    cfg.RabbitMQ.RetryDelay,
		Persistent:    cfg.RabbitMQ.Persistent,
	})
	if err != nil {
		logrus.Fatalf("Failed to create message publisher: %v", err)
	}
	defer publisher.Close()

	logrus.Info("Initializing external service clients...")
	userClient := clients.NewUserClient(&clients.UserClientConfig{
		BaseURL: cfg.External.UsersAPI.URL,
		APIKey:  cfg.External.UsersAPI.APIKey,
		Timeout: cfg.External.Timeout,
	})
	marketClient := clients.NewMarketClient(&clients.MarketClientConfig{
		BaseURL:  cfg.External.MarketAPI.URL,
		APIKey:   cfg.External.MarketAPI.APIKey,
		Timeout:  cfg.External.Timeout,
		QuoteTTL: cfg.Redis.QuoteTTL,
	}, redisCache)

	orderRepo := repositories.NewOrderRepository(db.Database)
	portfolioRepo := repositories.NewPortfolioRepository(db.Database)
	accountRepo := repositories.NewAccountRepository(db.Database)
	transactionRepo := repositories.NewTransactionRepository(db.Database)
	lockManager := repositories.NewAccountLockManager(repositories.NewLockRepository(redisCache.Raw()))

	ledgerService := ledger.NewService(
		orderRepo,
		portfolioRepo,
		accountRepo,
		transactionRepo,
		db,
		lockManager,
		marketClient,
		userClient,
		publisher,
		cfg.Redis.LockTTL,
	)

	metrics := monitoring.NewPrometheusMetrics()

	revalScheduler := scheduler.NewScheduler(ledgerService, metrics, cfg.Scheduler, logrus.StandardLogger())
	if err := revalScheduler.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer revalScheduler.Stop()

	authMiddleware := middleware.NewAuthMiddleware(&middleware.AuthConfig{
		SecretKey: cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.JWTIssuer,
	})
	logMiddleware := middleware.NewLoggingMiddleware(logrus.StandardLogger(), metrics)

	orderHandler := handlers.NewOrderHandler(ledgerService, metrics)
	accountHandler := handlers.NewAccountHandler(ledgerService, metrics)
	healthHandler := handlers.NewHealthHandler(db, redisCache, publisher)

	routerConfig := &routes.RouterConfig{
		Debug:          cfg.Server.Debug,
		CORSEnabled:    cfg.Server.CORSEnabled,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Monitoring.EnableMetrics,
		MetricsPath:    cfg.Monitoring.MetricsPath,
	}

	logrus.Info("Setting up HTTP routes...")
	router := routes.NewRouter(orderHandler, accountHandler, healthHandler, authMiddleware, logMiddleware, routerConfig)
	router.SetupRoutes(routerConfig)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
