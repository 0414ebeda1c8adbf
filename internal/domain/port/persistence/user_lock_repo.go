package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// UserLockRepository serializes settlements per user across processes
type UserLockRepository interface {
	// AcquireLock takes the user's settlement lock for at most ttl.
	// It does not wait; callers retry on ErrUserLocked.
	//
	// Possible errors:
	// - ErrUserLocked: If the lock is held by someone else
	// - ErrDatabaseConnection: If the lock backend is unreachable
	AcquireLock(ctx context.Context, userID uuid.UUID, ttl core.Duration) error

	// ReleaseLock releases a lock taken by this process
	//
	// Possible errors:
	// - ErrDatabaseConnection: If the lock backend is unreachable
	ReleaseLock(ctx context.Context, userID uuid.UUID) error
}
