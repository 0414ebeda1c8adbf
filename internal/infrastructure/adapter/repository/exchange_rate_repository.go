package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// ExchangeRateRepository stores the singleton exchange rate row
type ExchangeRateRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewExchangeRateRepository creates a new ExchangeRateRepository instance
func NewExchangeRateRepository(db *gorm.DB, logger coreport.Logger) *ExchangeRateRepository {
	return &ExchangeRateRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Create inserts the singleton. The unique singleton column turns a second insert into ErrDuplicateSingleton.
func (r *ExchangeRateRepository) Create(ctx context.Context, rate *entity.ExchangeRate) error {
	rateModel := model.ExchangeRate{
		ID:         rate.ID,
		Singleton:  true,
		Rate:       rate.Rate,
		LastUpdate: rate.LastUpdate,
	}
	if err := r.db.WithContext(ctx).Create(&rateModel).Error; err != nil {
		mapped := r.errorClassifier.Map(err, errs.ErrExchangeRateNotFound, errs.ErrDuplicateSingleton)
		if mapped != errs.ErrDuplicateSingleton {
			r.logger.Error("Failed to create exchange rate", map[string]any{
				"rate":  rate.Rate.String(),
				"error": err.Error(),
			})
		}
		return mapped
	}
	return nil
}

// Get returns a point-in-time snapshot of the rate
func (r *ExchangeRateRepository) Get(ctx context.Context) (*entity.ExchangeRate, error) {
	return r.get(r.db.WithContext(ctx))
}

// GetForShare reads the rate with FOR SHARE so a concurrent SetRate waits for the reader's commit
func (r *ExchangeRateRepository) GetForShare(ctx context.Context) (*entity.ExchangeRate, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "SHARE"}))
}

// GetForUpdate reads the rate with FOR UPDATE
func (r *ExchangeRateRepository) GetForUpdate(ctx context.Context) (*entity.ExchangeRate, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *ExchangeRateRepository) get(db *gorm.DB) (*entity.ExchangeRate, error) {
	var rateModel model.ExchangeRate
	if err := db.Where("singleton = ?", true).First(&rateModel).Error; err != nil {
		return nil, r.errorClassifier.Map(err, errs.ErrExchangeRateNotFound, nil)
	}
	return &entity.ExchangeRate{
		ID:         rateModel.ID,
		Rate:       rateModel.Rate,
		LastUpdate: rateModel.LastUpdate,
	}, nil
}

// Update writes rate and last_update together
func (r *ExchangeRateRepository) Update(ctx context.Context, rate *entity.ExchangeRate) error {
	result := r.db.WithContext(ctx).Model(&model.ExchangeRate{}).
		Where("singleton = ?", true).
		Updates(map[string]any{
			"rate":        rate.Rate,
			"last_update": rate.LastUpdate,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update exchange rate", map[string]any{
			"rate":  rate.Rate.String(),
			"error": result.Error.Error(),
		})
		return r.errorClassifier.Map(result.Error, errs.ErrExchangeRateNotFound, nil)
	}
	if result.RowsAffected == 0 {
		return errs.ErrExchangeRateNotFound
	}
	return nil
}
