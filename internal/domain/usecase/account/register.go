package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// Register creates the user, its balance and the DONE grant transaction in one unit
func (a *AccountUseCase) Register(ctx context.Context, email, password string) (*entity.User, *entity.Balance, error) {
	normalized, err := entity.NormalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if err := entity.ValidatePassword(password); err != nil {
		return nil, nil, err
	}

	if _, err := a.userRepo.GetByEmail(ctx, normalized); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", errs.ErrEmailTaken, normalized)
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: hashing password: %s", errs.ErrInternalServer, err.Error())
	}

	user, err := entity.NewUser(normalized, hash, a.timeProvider)
	if err != nil {
		return nil, nil, err
	}
	balance, err := entity.NewBalance(user.ID, entity.InitialGrant, a.timeProvider)
	if err != nil {
		return nil, nil, err
	}
	grant := entity.NewGrantTransaction(user.ID, entity.InitialGrant, a.timeProvider)

	err = a.uow.Do(ctx, func(txCtx context.Context) error {
		if err := a.uow.GetUserRepository(txCtx).Create(txCtx, user); err != nil {
			return err
		}
		if err := a.uow.GetBalanceRepository(txCtx).Create(txCtx, balance); err != nil {
			return err
		}
		return a.uow.GetTransactionRepository(txCtx).Create(txCtx, grant)
	})
	if err != nil {
		a.logger.Error("Failed to register account", map[string]any{
			"email": normalized,
			"error": err.Error(),
		})
		return nil, nil, err
	}

	a.logger.Info("Account registered", map[string]any{
		"user_id":         user.ID.String(),
		"initial_balance": balance.Amount.String(),
	})
	return user, balance, nil
}
