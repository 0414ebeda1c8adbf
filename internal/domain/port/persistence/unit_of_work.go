package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// Do runs fn in a transaction. fn's error rolls back; nil commits. The whole
	// attempt is retried when the store reports a transient conflict.
	Do(ctx context.Context, fn func(txCtx context.Context) error) error

	// GetUserRepository returns a user repository bound to the current transaction
	GetUserRepository(ctx context.Context) UserRepository

	// GetBalanceRepository returns a balance repository bound to the current transaction
	GetBalanceRepository(ctx context.Context) BalanceRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetExchangeRateRepository returns an exchange rate repository bound to the current transaction
	GetExchangeRateRepository(ctx context.Context) ExchangeRateRepository

	// GetGenerationRepository returns a generation repository bound to the current transaction
	GetGenerationRepository(ctx context.Context) GenerationRepository
}
