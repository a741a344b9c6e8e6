// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"visa-checker-backend/internal/catalog"
	"visa-checker-backend/internal/config"
	"visa-checker-backend/internal/database"
	"visa-checker-backend/internal/handlers"
	"visa-checker-backend/internal/repository"
	"visa-checker-backend/internal/routes"
	"visa-checker-backend/internal/services"
	"visa-checker-backend/internal/validation"
	"visa-checker-backend/internal/workflow"
)

func initLogger(env string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path != "" {
		return catalog.LoadFile(cfg.Path)
	}
	return catalog.LoadDefault()
}

func main() {
	logger := initLogger(os.Getenv("ENV"))
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	logger.Info("Starting visa-checker-backend server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Env))

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to load requirement catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	logger.Info("Requirement catalog loaded", zap.Int("destinations", cat.Len()))

	db, err := database.NewMongoDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			logger.Error("Error closing database connection", zap.Error(err))
		}
	}()
	logger.Info("Successfully connected to MongoDB")

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := database.NewRedis(redisCtx, cfg.Redis)
	redisCancel()
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Address), zap.Error(err))
	}
	defer rdb.Close()
	logger.Info("Successfully connected to Redis")

	sessionRepo := repository.NewSessionRepository(db.GetCollection(database.SessionsCollection))
	reportRepo := repository.NewReportRepository(db.GetCollection(database.ReportsCollection))
	paymentRepo := repository.NewPaymentRepository(db.GetCollection(database.PaymentsCollection))

	validationService := services.NewValidationService(sessionRepo, reportRepo, cat, validation.NewEngine(), logger.Named("validation"))
	providerService := services.NewPaymentProviderService(cfg.Payment, logger.Named("provider"))
	paymentService := services.NewPaymentService(paymentRepo, reportRepo, validationService, providerService, cfg.Payment, logger.Named("payment"))
	if cfg.Payment.ProviderURL == "" {
		logger.Warn("PAYMENT_PROVIDER_URL not set, checkouts use local URLs")
	}

	workflows := workflow.NewManager(workflow.NewRedisStore(rdb, cfg.Redis.WorkflowTTL), logger.Named("workflow"))

	redisPinger := handlers.PingFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"mongodb": db,
		"redis":   redisPinger,
	}, logger)

	h := &routes.Handlers{
		Health:   healthHandler,
		Catalog:  handlers.NewCatalogHandler(cat),
		Session:  handlers.NewSessionHandler(validationService, paymentService),
		Payment:  handlers.NewPaymentHandler(paymentService),
		Workflow: handlers.NewWorkflowHandler(workflows, validationService, paymentService, logger.Named("workflow")),
	}

	router := routes.SetupRoutes(h, cfg.Auth, logger)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Received shutdown signal, shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
