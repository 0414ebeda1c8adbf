package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// GetStatus returns the record only when it belongs to userID
func (s *Service) GetStatus(ctx context.Context, userID, generationID uuid.UUID) (*entity.GenerationRecord, error) {
	if generationID == uuid.Nil {
		return nil, errs.ErrInvalidGenerationID
	}
	return s.genRepo.GetByIDForUser(ctx, generationID, userID)
}

// List returns the user's generation records, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error) {
	return s.genRepo.ListByUser(ctx, userID, normalizeLimit(limit))
}

// GetAudio loads the artifact of a DONE record
func (s *Service) GetAudio(ctx context.Context, userID, generationID uuid.UUID) ([]byte, error) {
	record, err := s.GetStatus(ctx, userID, generationID)
	if err != nil {
		return nil, err
	}
	if record.Status != entity.GenerationDone || record.ResultLocation == nil {
		return nil, fmt.Errorf("%w: generation %s is %s", errs.ErrArtifactNotReady, record.ID, record.Status)
	}

	audio, err := s.artifacts.Load(ctx, *record.ResultLocation)
	if err != nil {
		s.logger.Error("Failed to load generation artifact", map[string]any{
			"generation_id": record.ID.String(),
			"location":      *record.ResultLocation,
			"error":         err.Error(),
		})
		return nil, err
	}
	return audio, nil
}
