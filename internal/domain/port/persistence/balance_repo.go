package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// BalanceRepository defines access to per-user token balances
type BalanceRepository interface {
	// Create stores the balance row of a new user
	//
	// Possible errors:
	// - ErrConstraintViolation: If the user already has a balance
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, balance *entity.Balance) error

	// GetByUserID reads the balance without locking it
	//
	// Possible errors:
	// - ErrBalanceNotFound: If the user has no balance row
	// - ErrDatabaseConnection: If database connection fails
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Balance, error)

	// GetByUserIDForUpdate reads the balance and holds a row lock until the
	// surrounding transaction ends. Must be called inside UnitOfWork.
	//
	// Possible errors:
	// - ErrBalanceNotFound: If the user has no balance row
	// - ErrConcurrentUpdate: If the store aborted the transaction on a lock conflict
	// - ErrDatabaseConnection: If database connection fails
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Balance, error)

	// Update writes the new amount
	//
	// Possible errors:
	// - ErrBalanceNotFound: If the row disappeared
	// - ErrConstraintViolation: If the amount would become negative
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, balance *entity.Balance) error
}
