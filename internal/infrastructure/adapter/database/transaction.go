package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/repository"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db           *gorm.DB
	isolation    sql.IsolationLevel
	retry        RetryConfig
	errorMapper  *ErrorMapper
	metrics      *MetricsCollector
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(
	db *gorm.DB,
	isolationLevel string,
	retry RetryConfig,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		isolation:    parseIsolationLevel(isolationLevel),
		retry:        retry,
		errorMapper:  NewErrorMapper(),
		metrics:      NewMetricsCollector(logger, timeProvider),
		logger:       logger,
		timeProvider: timeProvider,
	}
}

func parseIsolationLevel(level string) sql.IsolationLevel {
	switch strings.ToUpper(level) {
	case IsolationSerializable:
		return sql.LevelSerializable
	case IsolationRepeatableRead:
		return sql.LevelRepeatableRead
	default:
		return sql.LevelReadCommitted
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	tx := u.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: u.isolation})
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback rolls back the current transaction
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	err := tx.Rollback().Error
	if err != nil && strings.Contains(err.Error(), "already been committed or rolled back") {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Do runs fn in one database transaction and commits when fn returns nil.
// The whole unit is re-run when the database aborts it on a lock conflict, so fn
// must only have effects through the repositories it obtains from txCtx.
// A Do nested in another unit joins the outer transaction.
func (u *UnitOfWork) Do(ctx context.Context, fn func(txCtx context.Context) error) error {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	return RetryOnTransientError(ctx, u.retry, func() error {
		return u.metrics.MeasureUnit("unit_of_work", func() error {
			return u.runOnce(ctx, fn)
		})
	}, u.errorMapper, u.timeProvider, u.logger)
}

func (u *UnitOfWork) runOnce(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = u.Rollback(txCtx)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			u.logger.Warn("Rollback after failed unit of work failed", map[string]any{
				"error":    err.Error(),
				"rollback": rbErr.Error(),
			})
		}
		return err
	}
	return u.Commit(txCtx)
}

// GetUserRepository returns a user repository in the current transaction
func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return repository.NewUserRepository(u.getDbFromContext(ctx), u.logger)
}

// GetBalanceRepository returns a balance repository in the current transaction
func (u *UnitOfWork) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	return repository.NewBalanceRepository(u.getDbFromContext(ctx), u.logger)
}

// GetTransactionRepository returns a transaction repository in the current transaction
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// GetExchangeRateRepository returns an exchange rate repository in the current transaction
func (u *UnitOfWork) GetExchangeRateRepository(ctx context.Context) persistence.ExchangeRateRepository {
	return repository.NewExchangeRateRepository(u.getDbFromContext(ctx), u.logger)
}

// GetGenerationRepository returns a generation repository in the current transaction
func (u *UnitOfWork) GetGenerationRepository(ctx context.Context) persistence.GenerationRepository {
	return repository.NewGenerationRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok && tx != nil {
		return tx
	}
	return u.db.WithContext(ctx)
}
