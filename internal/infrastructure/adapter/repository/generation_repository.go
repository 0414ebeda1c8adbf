package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// GenerationRepository implements GenerationRepository interface using GORM
type GenerationRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewGenerationRepository creates a new GenerationRepository instance
func NewGenerationRepository(db *gorm.DB, logger coreport.Logger) *GenerationRepository {
	return &GenerationRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func generationToModel(record *entity.GenerationRecord) model.Generation {
	return model.Generation{
		ID:             record.ID,
		UserID:         record.UserID,
		Text:           record.Text,
		TokensSpent:    record.TokensSpent,
		Status:         string(record.Status),
		ResultLocation: record.ResultLocation,
		ErrorMessage:   record.ErrorMessage,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func generationToEntity(m *model.Generation) (*entity.GenerationRecord, error) {
	status, err := entity.ParseGenerationStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: generation %s: %s", errs.ErrInternalServer, m.ID, err.Error())
	}
	return &entity.GenerationRecord{
		ID:             m.ID,
		UserID:         m.UserID,
		Text:           m.Text,
		TokensSpent:    m.TokensSpent,
		Status:         status,
		ResultLocation: m.ResultLocation,
		ErrorMessage:   m.ErrorMessage,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// Create stores a new record
func (r *GenerationRepository) Create(ctx context.Context, record *entity.GenerationRecord) error {
	generationModel := generationToModel(record)
	if err := r.db.WithContext(ctx).Omit("User").Create(&generationModel).Error; err != nil {
		r.logger.Error("Failed to create generation record", map[string]any{
			"generation_id": record.ID.String(),
			"user_id":       record.UserID.String(),
			"error":         err.Error(),
		})
		return r.errorClassifier.Map(err, errs.ErrGenerationNotFound, errs.ErrConstraintViolation)
	}
	return nil
}

// GetByID retrieves a record regardless of owner
func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error) {
	return r.get(r.db.WithContext(ctx).Where("id = ?", id), id)
}

// GetByIDForUser retrieves a record filtered by both id and owner
func (r *GenerationRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.GenerationRecord, error) {
	return r.get(r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID), id)
}

func (r *GenerationRepository) get(db *gorm.DB, id uuid.UUID) (*entity.GenerationRecord, error) {
	var generationModel model.Generation
	if err := db.First(&generationModel).Error; err != nil {
		return nil, r.errorClassifier.Map(err, fmt.Errorf("%w: %s", errs.ErrGenerationNotFound, id), nil)
	}
	return generationToEntity(&generationModel)
}

// ListByUser returns the user's records, newest first
func (r *GenerationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error) {
	var models []model.Generation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.errorClassifier.Map(err, nil, nil)
	}

	records := make([]*entity.GenerationRecord, 0, len(models))
	for i := range models {
		record, err := generationToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Update persists a transition out of PROCESSING. Terminal rows are left untouched.
func (r *GenerationRepository) Update(ctx context.Context, record *entity.GenerationRecord) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&model.Generation{}).
		Where("id = ? AND status = ?", record.ID, string(entity.GenerationProcessing)).
		Updates(map[string]any{
			"status":          string(record.Status),
			"result_location": record.ResultLocation,
			"error_message":   record.ErrorMessage,
			"updated_at":      record.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update generation record", map[string]any{
			"generation_id": record.ID.String(),
			"error":         result.Error.Error(),
		})
		return r.errorClassifier.Map(result.Error, errs.ErrGenerationNotFound, nil)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&model.Generation{}).Where("id = ?", record.ID).Count(&count).Error; err != nil {
			return r.errorClassifier.Map(err, errs.ErrGenerationNotFound, nil)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", errs.ErrGenerationNotFound, record.ID)
		}
		return fmt.Errorf("%w: generation %s", errs.ErrInvalidStatusTransition, record.ID)
	}

	r.logger.Debug("Generation record updated", map[string]any{
		"generation_id": record.ID.String(),
		"status":        string(record.Status),
	})
	return nil
}
