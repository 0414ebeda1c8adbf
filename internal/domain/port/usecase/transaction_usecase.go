package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// TransactionUseCase defines the ledger operations
type TransactionUseCase interface {
	// Create records a PROCESSING transaction without touching the balance
	Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType string) (*entity.Transaction, error)

	// Settle applies a PROCESSING transaction to the balance. Settling a terminal
	// transaction returns it unchanged.
	Settle(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error)

	// CreateAndSettle runs Create followed by Settle
	CreateAndSettle(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType string) (*entity.Transaction, error)

	// Get returns one of the user's transactions
	Get(ctx context.Context, userID, transactionID uuid.UUID) (*entity.Transaction, error)

	// List returns the user's transactions, newest first
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error)
}
