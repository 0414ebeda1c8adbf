package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// GenerationRepository manages generation records
type GenerationRepository interface {
	// Create stores a new record
	//
	// Possible errors:
	// - ErrUserNotFound: If referenced user does not exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, record *entity.GenerationRecord) error

	// GetByID retrieves a record regardless of owner. Used by workers.
	//
	// Possible errors:
	// - ErrGenerationNotFound: If no record has this ID
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error)

	// GetByIDForUser retrieves a record only when it belongs to userID
	//
	// Possible errors:
	// - ErrGenerationNotFound: If no record matches both ID and user
	// - ErrDatabaseConnection: If database connection fails
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.GenerationRecord, error)

	// ListByUser returns the user's records, newest first
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error)

	// Update persists a status transition. Terminal rows are never overwritten.
	//
	// Possible errors:
	// - ErrGenerationNotFound: If no record has this ID
	// - ErrInvalidStatusTransition: If the stored row is already terminal
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, record *entity.GenerationRecord) error
}
