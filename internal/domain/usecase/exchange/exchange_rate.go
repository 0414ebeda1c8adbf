package exchange

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
)

// ExchangeRateService owns the singleton currency-to-token rate
type ExchangeRateService struct {
	uow          persistence.UnitOfWork
	rateRepo     persistence.ExchangeRateRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewExchangeRateService creates a new ExchangeRateService
func NewExchangeRateService(
	uow persistence.UnitOfWork,
	rateRepo persistence.ExchangeRateRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) usecase.ExchangeRateUseCase {
	return &ExchangeRateService{
		uow:          uow,
		rateRepo:     rateRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetRate returns the current rate
func (s *ExchangeRateService) GetRate(ctx context.Context) (*entity.ExchangeRate, error) {
	return s.rateRepo.Get(ctx)
}

// SetRate replaces the rate inside one database transaction and returns the previous value
func (s *ExchangeRateService) SetRate(ctx context.Context, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := entity.ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}

	var previous decimal.Decimal
	err := s.uow.Do(ctx, func(txCtx context.Context) error {
		repo := s.uow.GetExchangeRateRepository(txCtx)

		current, err := repo.GetForUpdate(txCtx)
		if err != nil {
			return err
		}

		previous, err = current.Update(rate, s.timeProvider)
		if err != nil {
			return err
		}
		return repo.Update(txCtx, current)
	})
	if err != nil {
		s.logger.Error("Failed to update exchange rate", map[string]any{
			"rate":  rate.String(),
			"error": err.Error(),
		})
		return decimal.Zero, err
	}

	s.logger.Info("Exchange rate updated", map[string]any{
		"previous_rate": previous.String(),
		"rate":          rate.String(),
	})
	return previous, nil
}

// CreateRate inserts the singleton; a second call fails with ErrDuplicateSingleton
func (s *ExchangeRateService) CreateRate(ctx context.Context, rate decimal.Decimal) (*entity.ExchangeRate, error) {
	record, err := entity.NewExchangeRate(rate, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := s.rateRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Exchange rate created", map[string]any{
		"rate": rate.String(),
	})
	return record, nil
}

// EnsureDefault seeds the singleton on first start
func (s *ExchangeRateService) EnsureDefault(ctx context.Context, rate decimal.Decimal) error {
	_, err := s.CreateRate(ctx, rate)
	if errors.Is(err, errs.ErrDuplicateSingleton) {
		s.logger.Debug("Exchange rate already initialised", nil)
		return nil
	}
	return err
}
