package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
)

// AccountUseCase implements registration and balance lookups
type AccountUseCase struct {
	uow          persistence.UnitOfWork
	userRepo     persistence.UserRepository
	balanceRepo  persistence.BalanceRepository
	hasher       coreport.PasswordHasher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewAccountUseCase creates a new account use case instance
func NewAccountUseCase(
	uow persistence.UnitOfWork,
	userRepo persistence.UserRepository,
	balanceRepo persistence.BalanceRepository,
	hasher coreport.PasswordHasher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) usecase.AccountUseCase {
	return &AccountUseCase{
		uow:          uow,
		userRepo:     userRepo,
		balanceRepo:  balanceRepo,
		hasher:       hasher,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetBalance returns the user's current balance
func (a *AccountUseCase) GetBalance(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalidUserID
	}

	balance, err := a.balanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrBalanceNotFound) {
			exists, existsErr := a.userRepo.Exists(ctx, userID)
			if existsErr == nil && !exists {
				return nil, errs.ErrUserNotFound
			}
		}
		a.logger.Error("Failed to get balance", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("Balance retrieved", map[string]any{
		"user_id": userID.String(),
		"balance": balance.Amount.String(),
	})
	return balance, nil
}

// Exists checks if a user exists with the given ID
func (a *AccountUseCase) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, errs.ErrInvalidUserID
	}
	return a.userRepo.Exists(ctx, userID)
}
