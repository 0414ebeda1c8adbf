package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/model"
)

// UserRepository implements UserRepository interface using GORM
type UserRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func userToModel(user *entity.User) model.User {
	return model.User{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func userToEntity(m *model.User) *entity.User {
	return &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	mapped := r.errorClassifier.Map(err, errs.ErrUserNotFound, errs.ErrEmailTaken)
	if errors.Is(mapped, errs.ErrUserNotFound) || errors.Is(mapped, errs.ErrEmailTaken) {
		r.logger.Warn(fmt.Sprintf("User %s rejected", operation), fields)
		return mapped
	}

	fields["error"] = err.Error()
	r.logger.Error(fmt.Sprintf("Database error when %s", operation), fields)
	return mapped
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.logger.Debug("Creating new user", map[string]any{
		"user_id": user.ID.String(),
	})

	userModel := userToModel(user)
	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		return r.handleDatabaseError("creating user", err, map[string]any{
			"user_id": user.ID.String(),
			"email":   user.Email,
		})
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, "id = ?", id).Error; err != nil {
		return nil, r.handleDatabaseError("getting user", err, map[string]any{
			"user_id": id.String(),
		})
	}
	return userToEntity(&userModel), nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, r.handleDatabaseError("getting user by email", err, map[string]any{
			"email": email,
		})
	}
	return userToEntity(&userModel), nil
}

// Exists checks if a user with the given ID exists
func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, r.handleDatabaseError("checking user existence", result.Error, map[string]any{
			"user_id": id.String(),
		})
	}
	return count > 0, nil
}
