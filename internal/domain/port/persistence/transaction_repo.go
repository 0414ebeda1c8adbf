package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with transaction data
type TransactionRepository interface {
	// Create saves a new transaction
	//
	// Possible errors:
	// - ErrUserNotFound: If referenced user does not exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a transaction by its ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// GetByIDForUpdate retrieves a transaction and locks its row for the rest of the
	// surrounding transaction, so concurrent settlements of the same ID serialize
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrConcurrentUpdate: If the store aborted the transaction on a lock conflict
	// - ErrDatabaseConnection: If database connection fails
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// Update persists a status transition. Only PROCESSING rows can be updated.
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrInvalidStatusTransition: If the stored row is already terminal
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, transaction *entity.Transaction) error

	// ListByUser returns the user's transactions, newest first
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error)
}
