package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// ExchangeRateUseCase defines access to the currency-to-token rate
type ExchangeRateUseCase interface {
	// GetRate returns the current rate
	GetRate(ctx context.Context) (*entity.ExchangeRate, error)

	// SetRate replaces the rate and returns the previous one
	SetRate(ctx context.Context, rate decimal.Decimal) (decimal.Decimal, error)

	// CreateRate creates the singleton; fails if it already exists
	CreateRate(ctx context.Context, rate decimal.Decimal) (*entity.ExchangeRate, error)

	// EnsureDefault creates the singleton with rate unless one exists
	EnsureDefault(ctx context.Context, rate decimal.Decimal) error
}
