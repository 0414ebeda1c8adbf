package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

const redisLockPrefix = "tts-ledger:lock:"

// RedisLockRepository keeps per-user settlement leases in Redis
type RedisLockRepository struct {
	locker *redislock.Client
	logger coreport.Logger
	held   sync.Map // uuid.UUID -> *redislock.Lock
}

// NewRedisLockRepository creates a lock repository on top of an existing client
func NewRedisLockRepository(client redis.UniversalClient, logger coreport.Logger) *RedisLockRepository {
	return &RedisLockRepository{
		locker: redislock.New(client),
		logger: logger,
	}
}

func redisLockKey(userID uuid.UUID) string {
	return redisLockPrefix + userID.String()
}

// AcquireLock obtains the lease once without retrying
func (r *RedisLockRepository) AcquireLock(ctx context.Context, userID uuid.UUID, ttl coreport.Duration) error {
	lock, err := r.locker.Obtain(ctx, redisLockKey(userID), ttl.Std(), nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("%w: %s", errs.ErrUserLocked, userID)
	}
	if err != nil {
		if isContextError(err) {
			return fmt.Errorf("lock acquisition timeout: %w", err)
		}
		r.logger.Error("Redis error acquiring lock", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	r.held.Store(userID, lock)
	r.logger.Debug("Lock acquired", map[string]any{
		"user_id": userID.String(),
		"ttl_ms":  ttl.Std().Milliseconds(),
	})
	return nil
}

// ReleaseLock drops the lease if this instance still holds it
func (r *RedisLockRepository) ReleaseLock(ctx context.Context, userID uuid.UUID) error {
	value, ok := r.held.LoadAndDelete(userID)
	if !ok {
		return nil
	}

	err := value.(*redislock.Lock).Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// expired and possibly taken by another process
		r.logger.Warn("Lock expired before release", map[string]any{
			"user_id": userID.String(),
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}
	return nil
}
