package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
)

// TransactionProcessor creates transactions and settles them against balances.
//
// Settlement is the only place a balance changes. Each settlement runs in one
// database transaction that locks the transaction row and then the balance row,
// so concurrent settlements of one user are serialized by the store. An optional
// UserLocker adds the same serialization in front of the database.
type TransactionProcessor struct {
	uow          persistence.UnitOfWork
	userRepo     persistence.UserRepository
	txnRepo      persistence.TransactionRepository
	locker       *UserLocker
	validator    *TransactionValidator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewTransactionProcessor creates a new TransactionProcessor. locker may be nil.
func NewTransactionProcessor(
	uow persistence.UnitOfWork,
	userRepo persistence.UserRepository,
	txnRepo persistence.TransactionRepository,
	locker *UserLocker,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) usecase.TransactionUseCase {
	return &TransactionProcessor{
		uow:          uow,
		userRepo:     userRepo,
		txnRepo:      txnRepo,
		locker:       locker,
		validator:    NewTransactionValidator(),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create inserts a PROCESSING transaction. The balance is not touched.
func (p *TransactionProcessor) Create(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	txType string,
) (*entity.Transaction, error) {
	p.logger.Debug("Creating transaction", map[string]any{
		"user_id": userID.String(),
		"amount":  amount.String(),
		"type":    txType,
	})

	if err := p.validator.ValidateCreate(userID, amount, txType); err != nil {
		return nil, err
	}

	exists, err := p.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", errs.ErrUserNotFound, userID)
	}

	txn, err := entity.NewTransaction(userID, amount, txType, p.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := p.txnRepo.Create(ctx, txn); err != nil {
		p.logger.Error("Failed to create transaction", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, err
	}

	p.logger.Info("Transaction created", map[string]any{
		"transaction_id": txn.ID.String(),
		"user_id":        userID.String(),
		"type":           txType,
		"amount":         amount.String(),
	})
	return txn, nil
}

// Settle applies a PROCESSING transaction to its owner's balance.
//
// A terminal transaction is returned unchanged. Business outcomes (insufficient
// balance, unsupported type) end as FAILED with a nil error; a missing balance row
// also ends as FAILED but is reported as ErrBalanceNotFound.
func (p *TransactionProcessor) Settle(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error) {
	p.logger.Debug("Settling transaction", map[string]any{
		"transaction_id": transactionID.String(),
	})

	if p.locker != nil {
		current, err := p.txnRepo.GetByID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if current.IsTerminal() {
			return current, nil
		}
		release, err := p.locker.Lock(ctx, current.UserID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var (
		settled *entity.Transaction
		outcome error
	)
	err := p.uow.Do(ctx, func(txCtx context.Context) error {
		settled, outcome = nil, nil
		txnRepo := p.uow.GetTransactionRepository(txCtx)

		txn, err := txnRepo.GetByIDForUpdate(txCtx, transactionID)
		if err != nil {
			return err
		}
		if txn.IsTerminal() {
			settled = txn
			return nil
		}

		balanceMissing, err := p.apply(txCtx, txn)
		if err != nil {
			return err
		}
		if balanceMissing {
			outcome = errs.NewBalanceError(txn.UserID.String(), txn.Amount.String(), "", errs.ErrBalanceNotFound)
		}
		if err := txnRepo.Update(txCtx, txn); err != nil {
			return err
		}
		settled = txn
		return nil
	})
	if err != nil {
		p.logger.Error("Settlement rolled back", map[string]any{
			"transaction_id": transactionID.String(),
			"error":          err.Error(),
		})
		return nil, err
	}

	fields := map[string]any{
		"transaction_id": settled.ID.String(),
		"user_id":        settled.UserID.String(),
		"type":           string(settled.Type),
		"status":         string(settled.Status),
	}
	if settled.Status == entity.TransactionDone {
		fields["tokens"] = settled.Tokens.String()
		fields["result_balance"] = settled.ResultBalance.String()
	} else if settled.ErrorMessage != "" {
		fields["reason"] = settled.ErrorMessage
	}
	p.logger.Info("Transaction settled", fields)

	return settled, outcome
}

// apply mutates the locked balance and the transaction in memory and writes the balance.
// balanceMissing reports that txn was failed because its owner has no balance row.
func (p *TransactionProcessor) apply(txCtx context.Context, txn *entity.Transaction) (balanceMissing bool, err error) {
	balanceRepo := p.uow.GetBalanceRepository(txCtx)

	balance, err := balanceRepo.GetByUserIDForUpdate(txCtx, txn.UserID)
	if errors.Is(err, errs.ErrBalanceNotFound) {
		return true, txn.MarkAsFailed(p.timeProvider, errs.ErrBalanceNotFound.Error())
	}
	if err != nil {
		return false, err
	}

	switch txn.Type {
	case entity.TypeCredit:
		rate, err := p.uow.GetExchangeRateRepository(txCtx).GetForShare(txCtx)
		if err != nil {
			return false, err
		}
		tokens := rate.Convert(txn.Amount)
		if !tokens.IsPositive() {
			reason := errs.NewTransactionError(
				txn.ID.String(), txn.UserID.String(), string(txn.Type), string(txn.Status),
				txn.Amount.String(), "converts to zero tokens at rate "+rate.Rate.String(), errs.ErrInvalidAmount,
			)
			return false, txn.MarkAsFailed(p.timeProvider, reason.Error())
		}
		if err := balance.Credit(tokens, p.timeProvider); err != nil {
			return false, err
		}
		if err := balanceRepo.Update(txCtx, balance); err != nil {
			return false, err
		}
		return false, txn.MarkAsDone(p.timeProvider, tokens, rate.Rate, balance.Amount)

	case entity.TypeDebit:
		if !balance.CanDebit(txn.Amount) {
			reason := errs.NewInsufficientBalanceError(
				txn.UserID.String(), txn.ID.String(), txn.Amount.String(), balance.Amount.String(),
			)
			return false, txn.MarkAsFailed(p.timeProvider, reason.Error())
		}
		if err := balance.Debit(txn.Amount, p.timeProvider); err != nil {
			return false, err
		}
		if err := balanceRepo.Update(txCtx, balance); err != nil {
			return false, err
		}
		return false, txn.MarkAsDone(p.timeProvider, txn.Amount, decimal.Zero, balance.Amount)

	default:
		reason := errs.NewTransactionError(
			txn.ID.String(), txn.UserID.String(), string(txn.Type), string(txn.Status),
			txn.Amount.String(), "unsupported type", errs.ErrInvalidTransactionType,
		)
		return false, txn.MarkAsFailed(p.timeProvider, reason.Error())
	}
}

// CreateAndSettle creates a transaction and settles it right away
func (p *TransactionProcessor) CreateAndSettle(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
	txType string,
) (*entity.Transaction, error) {
	txn, err := p.Create(ctx, userID, amount, txType)
	if err != nil {
		return nil, err
	}

	settled, err := p.Settle(ctx, txn.ID)
	if settled == nil {
		return txn, err
	}
	return settled, err
}

// Get returns a transaction only to its owner
func (p *TransactionProcessor) Get(ctx context.Context, userID, transactionID uuid.UUID) (*entity.Transaction, error) {
	txn, err := p.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, transactionID)
	}
	return txn, nil
}

// List returns the user's most recent transactions
func (p *TransactionProcessor) List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error) {
	return p.txnRepo.ListByUser(ctx, userID, p.validator.NormalizeLimit(limit))
}
