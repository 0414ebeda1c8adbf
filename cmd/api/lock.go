package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/config"
)

// newLockBackend builds the settlement lock selected by settlement.lockBackend.
// A nil repository means settlements rely on row locks only.
func newLockBackend(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	tp coreport.TimeProvider,
	appLogger coreport.Logger,
) (persistence.UserLockRepository, func(), error) {
	switch strings.ToLower(cfg.Settlement.LockBackend) {
	case "", lockBackendNone:
		appLogger.Info("Settlement lock disabled, relying on row locks", nil)
		return nil, func() {}, nil

	case lockBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		appLogger.Info("Using redis settlement lock", map[string]any{"addr": cfg.Redis.Addr})
		return repository.NewRedisLockRepository(client, appLogger), func() { _ = client.Close() }, nil

	case lockBackendDatabase:
		repo := repository.NewUserLockRepository(db, tp, appLogger)
		cleanupCtx, cancel := context.WithCancel(ctx)
		go runLockCleanup(cleanupCtx, repo, cfg.Settlement.CleanupInterval, appLogger)
		appLogger.Info("Using database settlement lock", map[string]any{
			"cleanup_interval": cfg.Settlement.CleanupInterval.String(),
		})
		return repo, cancel, nil

	default:
		return nil, nil, fmt.Errorf("unknown settlement lock backend %q", cfg.Settlement.LockBackend)
	}
}

// runLockCleanup periodically deletes expired user_locks rows until ctx is done
func runLockCleanup(ctx context.Context, repo *repository.UserLockRepository, interval time.Duration, appLogger coreport.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.CleanupExpiredLocks(ctx)
			if err != nil {
				continue
			}
			if removed > 0 {
				appLogger.Debug("Expired settlement locks removed", map[string]any{"count": removed})
			}
		}
	}
}
