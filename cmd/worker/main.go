package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/usecase/generation"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/messaging/rabbitmq"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/storage"
	timeProvider "github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/tts"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	baseLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	baseLogger.SetLevel(logger.ParseLevel(cfg.Logger.Level))
	defer func() { _ = baseLogger.Flush() }()
	appLogger := baseLogger.With(map[string]any{"worker_id": cfg.Worker.ID})

	tp := timeProvider.NewRealTimeProvider()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema is owned by the API; the worker only reads and updates generation records
	dbManager := database.NewManager(database.CreateConfigFromViperConfig(cfg), appLogger, tp)
	db, err := dbManager.Connect(rootCtx)
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer dbManager.Close()

	artifacts, closeArtifacts, err := storage.Open(rootCtx, cfg.Storage, appLogger)
	if err != nil {
		appLogger.Error("Failed to open artifact store", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer closeArtifacts()

	speech := tts.NewSpeechClient(cfg.TTS.ServiceURL, cfg.TTS.Timeout, cfg.TTS.Language, cfg.TTS.Temperature)
	if err := speech.HealthCheck(rootCtx); err != nil {
		// tasks fail individually until the speech server is back
		appLogger.Warn("Speech service not healthy at startup", map[string]any{
			"url":   cfg.TTS.ServiceURL,
			"error": err.Error(),
		})
	}

	processor := generation.NewTaskProcessor(
		repository.NewGenerationRepository(db, appLogger),
		tts.NewEngine(speech, artifacts, tp, appLogger),
		tp, appLogger,
	)

	consumerCfg := rabbitmq.DefaultConsumerConfig(cfg.RabbitMQ.URL(), rabbitmq.Topology{
		Exchange: cfg.RabbitMQ.Exchange,
		Queue:    cfg.RabbitMQ.Queue,
	}, cfg.Worker.ID)
	if cfg.Worker.TaskTimeout > 0 {
		consumerCfg.TaskTimeout = cfg.Worker.TaskTimeout
	}
	consumer := rabbitmq.NewConsumer(consumerCfg, processor, tp, appLogger)

	appLogger.Info("Worker started", map[string]any{
		"queue":        cfg.RabbitMQ.Queue,
		"tts_url":      cfg.TTS.ServiceURL,
		"storage":      cfg.Storage.Backend,
		"task_timeout": consumerCfg.TaskTimeout.String(),
	})

	if err := consumer.Run(rootCtx); err != nil {
		appLogger.Error("Worker stopped", map[string]any{"error": err.Error()})
		stop()
		_ = baseLogger.Flush()
		os.Exit(1)
	}

	pool := dbManager.PoolStats()
	appLogger.Info("Worker exited gracefully", map[string]any{
		"db_wait_count": pool.WaitCount,
		"db_wait_time":  pool.WaitDuration.String(),
	})
}

// validateConfig ensures the settings the worker depends on are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Worker.ID == "" {
		missingConfigs = append(missingConfigs, "worker.id (or WORKER_ID)")
	}
	if cfg.Database.Host == "" {
		missingConfigs = append(missingConfigs, "database.host (or DB_HOST)")
	}
	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database (or DB_NAME)")
	}
	if cfg.RabbitMQ.Host == "" {
		missingConfigs = append(missingConfigs, "rabbitmq.host (or RABBITMQ_HOST)")
	}
	if cfg.RabbitMQ.Queue == "" || cfg.RabbitMQ.Exchange == "" {
		missingConfigs = append(missingConfigs, "rabbitmq.exchange and rabbitmq.queue")
	}
	if cfg.TTS.ServiceURL == "" {
		missingConfigs = append(missingConfigs, "tts.serviceUrl (or TTS_SERVICE_URL)")
	}
	if cfg.TTS.Timeout == 0 {
		missingConfigs = append(missingConfigs, "tts.timeout")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	switch cfg.Storage.Backend {
	case storage.BackendFilesystem, storage.BackendNats:
	default:
		return fmt.Errorf("invalid storage.backend %q, must be one of: %s, %s",
			cfg.Storage.Backend, storage.BackendFilesystem, storage.BackendNats)
	}
	return nil
}
