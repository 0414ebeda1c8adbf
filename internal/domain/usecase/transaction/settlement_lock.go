package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
)

// LockConfig controls how long a settlement waits for and holds the per-user lock
type LockConfig struct {
	TTL           coreport.Duration
	Timeout       coreport.Duration
	RetryInterval coreport.Duration
}

// UserLocker serializes settlements of one user across processes
type UserLocker struct {
	repo         persistence.UserLockRepository
	cfg          LockConfig
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewUserLocker creates a UserLocker on top of a lock backend
func NewUserLocker(
	repo persistence.UserLockRepository,
	cfg LockConfig,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserLocker {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * coreport.Millisecond
	}
	return &UserLocker{
		repo:         repo,
		cfg:          cfg,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Lock waits up to the configured timeout for the user's lock and returns its release func
func (l *UserLocker) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	deadline := l.timeProvider.Now().Add(l.cfg.Timeout.Std())

	for attempt := 1; ; attempt++ {
		err := l.repo.AcquireLock(ctx, userID, l.cfg.TTL)
		if err == nil {
			return func() { l.release(ctx, userID) }, nil
		}
		if !errors.Is(err, errs.ErrUserLocked) || !l.timeProvider.Now().Before(deadline) {
			l.logger.Warn("Could not acquire settlement lock", map[string]any{
				"user_id":  userID.String(),
				"attempts": attempt,
				"error":    err.Error(),
			})
			return nil, err
		}
		if sleepErr := l.timeProvider.Sleep(ctx, l.cfg.RetryInterval); sleepErr != nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrUserLocked, sleepErr.Error())
		}
	}
}

func (l *UserLocker) release(ctx context.Context, userID uuid.UUID) {
	if err := l.repo.ReleaseLock(context.WithoutCancel(ctx), userID); err != nil {
		l.logger.Error("Failed to release settlement lock", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
}
