package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/config"
)

// Storage backends
const (
	BackendFilesystem = "filesystem"
	BackendNats       = "nats"
)

// Open builds the artifact store selected by cfg.Backend. The returned func releases
// whatever connection the store holds.
func Open(ctx context.Context, cfg config.StorageConfig, logger coreport.Logger) (generation.ArtifactStore, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFilesystem:
		store, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using filesystem artifact store", map[string]any{"dir": store.dir})
		return store, func() {}, nil

	case BackendNats:
		nc, err := nats.Connect(cfg.NatsURL,
			nats.Name("tts-ledger"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					logger.Warn("NATS disconnected", map[string]any{"error": err.Error()})
				}
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("NATS reconnected", map[string]any{"url": c.ConnectedUrl()})
			}),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to nats at %s: %w", cfg.NatsURL, err)
		}

		store, err := NewNatsObjectStore(ctx, nc, cfg.NatsBucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		logger.Info("Using NATS object store", map[string]any{
			"url":    cfg.NatsURL,
			"bucket": cfg.NatsBucket,
		})
		return store, func() { _ = nc.Drain() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
