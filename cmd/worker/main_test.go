package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/config"
)

func validWorkerConfig() *config.Config {
	return &config.Config{
		Environment: config.Development,
		Database:    config.DatabaseConfig{Host: "localhost", Database: "tts_ledger"},
		RabbitMQ:    config.RabbitMQConfig{Host: "localhost", Exchange: "ml_exchange", Queue: "ml_tasks"},
		Worker:      config.WorkerConfig{ID: "worker-1"},
		Storage:     config.StorageConfig{Backend: "filesystem", Dir: "output"},
		TTS:         config.TTSConfig{ServiceURL: "http://localhost:8000", Timeout: 2 * time.Minute},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *config.Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "nats storage", mutate: func(c *config.Config) { c.Storage.Backend = "nats" }},
		{
			name:      "missing worker id",
			mutate:    func(c *config.Config) { c.Worker.ID = "" },
			errSubstr: "worker.id",
		},
		{
			name:      "missing speech service",
			mutate:    func(c *config.Config) { c.TTS.ServiceURL = "" },
			errSubstr: "tts.serviceUrl",
		},
		{
			name:      "unknown storage",
			mutate:    func(c *config.Config) { c.Storage.Backend = "s3" },
			errSubstr: "invalid storage.backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validWorkerConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}
