package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/usecase/exchange"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/usecase/generation"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/messaging/rabbitmq"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/storage"
	timeProvider "github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/config"
)

// Settlement lock backends
const (
	lockBackendNone     = "none"
	lockBackendRedis    = "redis"
	lockBackendDatabase = "database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	// rootCtx is canceled on SIGINT/SIGTERM
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbManager := database.NewManager(database.CreateConfigFromViperConfig(cfg), appLogger, tp)
	db, err := dbManager.Connect(rootCtx)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(rootCtx); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	balanceRepo := repository.NewBalanceRepository(db, appLogger)
	txnRepo := repository.NewTransactionRepository(db, appLogger)
	rateRepo := repository.NewExchangeRateRepository(db, appLogger)
	genRepo := repository.NewGenerationRepository(db, appLogger)
	uow := dbManager.CreateUnitOfWork()

	lockRepo, closeLock, err := newLockBackend(rootCtx, cfg, db, tp, appLogger)
	if err != nil {
		appLogger.Error("Failed to set up settlement lock", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer closeLock()

	var locker *transaction.UserLocker
	if lockRepo != nil {
		locker = transaction.NewUserLocker(lockRepo, transaction.LockConfig{
			TTL:           coreport.Duration(cfg.Settlement.LockTTL),
			Timeout:       coreport.Duration(cfg.Settlement.LockTimeout),
			RetryInterval: coreport.Duration(cfg.Settlement.LockRetry),
		}, tp, appLogger)
	}

	transactions := transaction.NewTransactionProcessor(uow, userRepo, txnRepo, locker, tp, appLogger)

	rates := exchange.NewExchangeRateService(uow, rateRepo, tp, appLogger)
	defaultRate, err := decimal.NewFromString(cfg.Exchange.DefaultRate)
	if err != nil {
		appLogger.Error("Invalid default exchange rate", map[string]any{
			"rate":  cfg.Exchange.DefaultRate,
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if err := rates.EnsureDefault(rootCtx, defaultRate); err != nil {
		appLogger.Error("Failed to seed exchange rate", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	accounts := account.NewAccountUseCase(uow, userRepo, balanceRepo, security.NewBcryptHasher(0), tp, appLogger)

	artifacts, closeArtifacts, err := storage.Open(rootCtx, cfg.Storage, appLogger)
	if err != nil {
		appLogger.Error("Failed to open artifact store", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer closeArtifacts()

	publisher := rabbitmq.NewPublisher(
		rabbitmq.DefaultPublisherConfig(cfg.RabbitMQ.URL(), rabbitmq.Topology{
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}),
		tp, appLogger,
	)
	// The broker may come up after the API; Publish connects lazily in that case
	if err := publisher.Open(rootCtx); err != nil {
		appLogger.Warn("Broker not reachable at startup", map[string]any{"error": err.Error()})
	}
	defer publisher.Close()

	generations := generation.NewService(
		transactions, balanceRepo, genRepo, publisher,
		generation.NewWordCountEstimator(cfg.Generation.TokensPerWord),
		artifacts,
		generation.ServiceConfig{
			Description:    cfg.Generation.Description,
			PublishTimeout: coreport.Duration(cfg.RabbitMQ.PublishTimeout),
		},
		tp, appLogger,
	)

	router := routes.NewRouter(routes.Handlers{
		User:         handler.NewUserHandler(accounts, appLogger),
		Transaction:  handler.NewTransactionHandler(transactions, appLogger),
		Generation:   handler.NewGenerationHandler(generations, appLogger),
		ExchangeRate: handler.NewExchangeRateHandler(rates, appLogger),
		Health:       handler.NewHealthHandler(dbManager, appLogger),
	}, appLogger, tp)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-rootCtx.Done()
	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Database.Host == "" {
		missingConfigs = append(missingConfigs, "database.host (or DB_HOST)")
	}
	if cfg.Database.Port == "" {
		missingConfigs = append(missingConfigs, "database.port (or DB_PORT)")
	}
	if cfg.Database.Username == "" {
		missingConfigs = append(missingConfigs, "database.username (or DB_USER)")
	}
	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database (or DB_NAME)")
	}
	if cfg.Database.QueryTimeout == 0 {
		missingConfigs = append(missingConfigs, "database.queryTimeout")
	}

	if cfg.RabbitMQ.Host == "" {
		missingConfigs = append(missingConfigs, "rabbitmq.host (or RABBITMQ_HOST)")
	}
	if cfg.RabbitMQ.Exchange == "" || cfg.RabbitMQ.Queue == "" {
		missingConfigs = append(missingConfigs, "rabbitmq.exchange and rabbitmq.queue")
	}
	if cfg.RabbitMQ.PublishTimeout == 0 {
		missingConfigs = append(missingConfigs, "rabbitmq.publishTimeout")
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	switch cfg.Environment {
	case config.Development, config.Production, config.Test:
	default:
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	switch strings.ToLower(cfg.Settlement.LockBackend) {
	case "", lockBackendNone, lockBackendDatabase:
	case lockBackendRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("settlement.lockBackend is redis but redis.addr is empty")
		}
	default:
		return fmt.Errorf("invalid settlement.lockBackend %q, must be one of: none, redis, database", cfg.Settlement.LockBackend)
	}
	if cfg.Settlement.LockTTL <= cfg.Settlement.LockTimeout && strings.ToLower(cfg.Settlement.LockBackend) != lockBackendNone {
		log.Printf("Warning: settlement.lockTtlMs (%s) should exceed settlement.lockTimeoutMs (%s)",
			cfg.Settlement.LockTTL, cfg.Settlement.LockTimeout)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		sslMode := strings.ToLower(cfg.Database.SSLMode)
		if sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}
		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
