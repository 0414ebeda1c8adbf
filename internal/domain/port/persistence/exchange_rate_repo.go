package persistence

import (
	"context"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// ExchangeRateRepository manages the singleton exchange rate row
type ExchangeRateRepository interface {
	// Create inserts the singleton
	//
	// Possible errors:
	// - ErrDuplicateSingleton: If a rate record already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, rate *entity.ExchangeRate) error

	// Get reads the current rate without locking
	//
	// Possible errors:
	// - ErrExchangeRateNotFound: If the singleton was never created
	// - ErrDatabaseConnection: If database connection fails
	Get(ctx context.Context) (*entity.ExchangeRate, error)

	// GetForShare reads the rate under a share lock, blocking concurrent updates
	// until the surrounding transaction ends
	//
	// Possible errors:
	// - ErrExchangeRateNotFound: If the singleton was never created
	// - ErrDatabaseConnection: If database connection fails
	GetForShare(ctx context.Context) (*entity.ExchangeRate, error)

	// GetForUpdate reads the rate under an exclusive row lock
	//
	// Possible errors:
	// - ErrExchangeRateNotFound: If the singleton was never created
	// - ErrDatabaseConnection: If database connection fails
	GetForUpdate(ctx context.Context) (*entity.ExchangeRate, error)

	// Update writes rate and last_update together
	//
	// Possible errors:
	// - ErrExchangeRateNotFound: If the singleton disappeared
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, rate *entity.ExchangeRate) error
}
