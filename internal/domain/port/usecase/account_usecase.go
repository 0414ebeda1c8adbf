package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// AccountUseCase defines account registration and balance lookups
type AccountUseCase interface {
	// Register creates a user together with its initial balance and grant transaction
	Register(ctx context.Context, email, password string) (*entity.User, *entity.Balance, error)

	// GetBalance returns the user's current balance
	GetBalance(ctx context.Context, userID uuid.UUID) (*entity.Balance, error)

	// Exists checks whether a user exists
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}
