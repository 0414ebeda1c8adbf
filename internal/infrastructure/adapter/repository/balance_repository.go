package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// BalanceRepository implements BalanceRepository interface using GORM
type BalanceRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewBalanceRepository creates a new BalanceRepository instance
func NewBalanceRepository(db *gorm.DB, logger coreport.Logger) *BalanceRepository {
	return &BalanceRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func balanceToEntity(m *model.Balance) *entity.Balance {
	return &entity.Balance{
		ID:        m.ID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		UpdatedAt: m.UpdatedAt,
	}
}

// Create inserts the user's balance row
func (r *BalanceRepository) Create(ctx context.Context, balance *entity.Balance) error {
	balanceModel := model.Balance{
		ID:        balance.ID,
		UserID:    balance.UserID,
		Amount:    balance.Amount,
		UpdatedAt: balance.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&balanceModel).Error; err != nil {
		r.logger.Error("Failed to create balance", map[string]any{
			"user_id": balance.UserID.String(),
			"error":   err.Error(),
		})
		return r.errorClassifier.Map(err, errs.ErrBalanceNotFound, errs.ErrConstraintViolation)
	}
	return nil
}

// GetByUserID reads the balance without locking it
func (r *BalanceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	return r.get(r.db.WithContext(ctx), userID)
}

// GetByUserIDForUpdate reads the balance with SELECT ... FOR UPDATE.
// It must run inside a unit of work for the lock to outlive the statement.
func (r *BalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *BalanceRepository) get(db *gorm.DB, userID uuid.UUID) (*entity.Balance, error) {
	var balanceModel model.Balance
	if err := db.Where("user_id = ?", userID).First(&balanceModel).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("Failed to get balance", map[string]any{
				"user_id": userID.String(),
				"error":   err.Error(),
			})
		}
		return nil, r.errorClassifier.Map(err, errs.ErrBalanceNotFound, nil)
	}
	return balanceToEntity(&balanceModel), nil
}

// Update writes the new amount. The CHECK constraint rejects a negative amount.
func (r *BalanceRepository) Update(ctx context.Context, balance *entity.Balance) error {
	result := r.db.WithContext(ctx).Model(&model.Balance{}).
		Where("user_id = ?", balance.UserID).
		Updates(map[string]any{
			"amount":     balance.Amount,
			"updated_at": balance.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update balance", map[string]any{
			"user_id": balance.UserID.String(),
			"amount":  balance.Amount.String(),
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.Map(result.Error, errs.ErrBalanceNotFound, nil)
	}
	if result.RowsAffected == 0 {
		return errs.ErrBalanceNotFound
	}

	r.logger.Debug("Balance updated", map[string]any{
		"user_id": balance.UserID.String(),
		"amount":  balance.Amount.String(),
	})
	return nil
}
