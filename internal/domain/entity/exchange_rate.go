package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// DefaultExchangeRate is the rate seeded when the service starts on an empty database
var DefaultExchangeRate = decimal.RequireFromString("1.2")

// ExchangeRate is the single currency-to-token conversion factor
type ExchangeRate struct {
	ID         uuid.UUID
	Rate       decimal.Decimal
	LastUpdate time.Time
}

// NewExchangeRate creates the singleton rate record
func NewExchangeRate(rate decimal.Decimal, timeProvider tport.TimeProvider) (*ExchangeRate, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	return &ExchangeRate{
		ID:         uuid.New(),
		Rate:       rate,
		LastUpdate: timeProvider.Now(),
	}, nil
}

// Update replaces the rate and returns the previous one
func (r *ExchangeRate) Update(newRate decimal.Decimal, timeProvider tport.TimeProvider) (decimal.Decimal, error) {
	if err := ValidateRate(newRate); err != nil {
		return decimal.Zero, err
	}
	previous := r.Rate
	r.Rate = newRate
	r.LastUpdate = timeProvider.Now()
	return previous, nil
}

// Convert turns a currency amount into tokens, rounded half away from zero to
// MaxDecimalPlaces so the result matches what the ledger columns store
func (r *ExchangeRate) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.Rate).Round(MaxDecimalPlaces)
}

// ValidateRate rejects zero and negative rates
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidRate, rate.String())
	}
	return nil
}
