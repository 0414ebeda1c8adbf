package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            transaction.ID,
		UserID:        transaction.UserID,
		Amount:        transaction.Amount,
		Type:          string(transaction.Type),
		Status:        string(transaction.Status),
		Rate:          transaction.Rate,
		Tokens:        transaction.Tokens,
		ResultBalance: transaction.ResultBalance,
		ErrorMessage:  transaction.ErrorMessage,
		CreatedAt:     transaction.CreatedAt,
		ProcessedAt:   transaction.ProcessedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) (*entity.Transaction, error) {
	status, err := entity.ParseTransactionStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s: %s", errs.ErrInternalServer, m.ID, err.Error())
	}
	return &entity.Transaction{
		ID:            m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          entity.TransactionType(m.Type),
		Status:        status,
		Rate:          m.Rate,
		Tokens:        m.Tokens,
		ResultBalance: m.ResultBalance,
		ErrorMessage:  m.ErrorMessage,
		CreatedAt:     m.CreatedAt,
		ProcessedAt:   m.ProcessedAt,
	}, nil
}

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": transaction.ID.String(),
		"user_id":        transaction.UserID.String(),
	})

	transactionModel := r.entityToModel(transaction)
	if err := r.db.WithContext(ctx).Omit("User").Create(&transactionModel).Error; err != nil {
		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": transaction.ID.String(),
			"user_id":        transaction.UserID.String(),
			"error":          err.Error(),
		})
		return r.errorClassifier.Map(err, errs.ErrTransactionNotFound, errs.ErrConstraintViolation)
	}
	return nil
}

// GetByID retrieves a transaction without locking it
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves a transaction with SELECT ... FOR UPDATE
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *TransactionRepository) get(db *gorm.DB, id uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.Transaction
	if err := db.Where("id = ?", id).First(&transactionModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, id)
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"transaction_id": id.String(),
			"error":          err.Error(),
		})
		return nil, r.errorClassifier.Map(err, errs.ErrTransactionNotFound, nil)
	}
	return r.modelToEntity(&transactionModel)
}

// Update persists the settlement outcome. Only PROCESSING rows are written, so a
// terminal transaction is never overwritten.
func (r *TransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Updating transaction", map[string]any{
		"transaction_id": transaction.ID.String(),
		"status":         string(transaction.Status),
	})

	transactionModel := r.entityToModel(transaction)
	db := r.db.WithContext(ctx)
	result := db.Model(&model.Transaction{}).
		Where("id = ? AND status = ?", transaction.ID, string(entity.TransactionProcessing)).
		Updates(map[string]any{
			"status":         transactionModel.Status,
			"rate":           transactionModel.Rate,
			"tokens":         transactionModel.Tokens,
			"result_balance": transactionModel.ResultBalance,
			"error_message":  transactionModel.ErrorMessage,
			"processed_at":   transactionModel.ProcessedAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": transaction.ID.String(),
			"error":          result.Error.Error(),
		})
		return r.errorClassifier.Map(result.Error, errs.ErrTransactionNotFound, nil)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Transaction{}).Where("id = ?", transaction.ID).Count(&count).Error; err != nil {
			return r.errorClassifier.Map(err, errs.ErrTransactionNotFound, nil)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, transaction.ID)
		}
		r.logger.Warn("Refusing to overwrite terminal transaction", map[string]any{
			"transaction_id": transaction.ID.String(),
		})
		return fmt.Errorf("%w: transaction %s", errs.ErrInvalidStatusTransition, transaction.ID)
	}
	return nil
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error) {
	var models []model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, r.errorClassifier.Map(err, nil, nil)
	}

	transactions := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		txn, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}
