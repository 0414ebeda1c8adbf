package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// GenerationUseCase defines the API-facing generation operations
type GenerationUseCase interface {
	// RequestGeneration debits the estimated cost, records the generation and dispatches it.
	// A dispatch failure is reported through a FAILED record, not an error.
	RequestGeneration(ctx context.Context, userID uuid.UUID, text string) (*entity.GenerationRecord, error)

	// GetStatus returns one of the user's generation records
	GetStatus(ctx context.Context, userID, generationID uuid.UUID) (*entity.GenerationRecord, error)

	// List returns the user's generation records, newest first
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error)

	// GetAudio returns the generated audio of a DONE record
	GetAudio(ctx context.Context, userID, generationID uuid.UUID) ([]byte, error)
}
