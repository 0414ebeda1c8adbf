package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// UserLockRepository implements a lease lock on a user's settlements with the user_locks table.
// Each instance remembers the lock ids it issued so it only ever deletes its own leases.
type UserLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
	held            sync.Map // uuid.UUID -> lock id
}

// NewUserLockRepository creates a new UserLockRepository instance
func NewUserLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserLockRepository {
	return &UserLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock takes the lease for userID when it is free or expired
func (r *UserLockRepository) AcquireLock(ctx context.Context, userID uuid.UUID, ttl coreport.Duration) error {
	now := r.timeProvider.Now()
	expiresAt := now.Add(ttl.Std())
	lockID := uuid.NewString()

	// An unexpired lease makes the conditional upsert touch no rows
	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO user_locks (user_id, lock_id, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET lock_id = EXCLUDED.lock_id,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE user_locks.expires_at <= ?`,
		userID, lockID, expiresAt, now, now,
		now,
	)

	if err := result.Error; err != nil {
		if isContextError(err) {
			return fmt.Errorf("lock acquisition timeout: %w", err)
		}
		r.logger.Error("Database error acquiring lock", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrUserLocked, userID)
	}

	r.held.Store(userID, lockID)
	r.logger.Debug("Lock acquired", map[string]any{
		"user_id":    userID.String(),
		"expires_at": expiresAt,
	})
	return nil
}

// isContextError checks if an error is related to context timeout or cancellation
func isContextError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled")
}

// ReleaseLock deletes the lease if this instance still owns it
func (r *UserLockRepository) ReleaseLock(ctx context.Context, userID uuid.UUID) error {
	value, ok := r.held.LoadAndDelete(userID)
	if !ok {
		return nil
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND lock_id = ?", userID, value.(string)).
		Delete(&model.UserLock{})

	// The lease expires on its own
	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context timeout when releasing lock, lock will expire automatically", map[string]any{
			"user_id": userID.String(),
			"error":   result.Error.Error(),
		})
		return nil
	}
	if result.Error != nil {
		r.logger.Error("Failed to release lock", map[string]any{
			"user_id": userID.String(),
			"error":   result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Lock expired before release", map[string]any{
			"user_id": userID.String(),
		})
	}
	return nil
}

// CleanupExpiredLocks removes all expired leases
func (r *UserLockRepository) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", r.timeProvider.Now()).Delete(&model.UserLock{})
	if result.Error != nil {
		r.logger.Error("Failed to clean up expired locks", map[string]any{
			"error": result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return result.RowsAffected, nil
}
