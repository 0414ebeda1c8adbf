package generation

import (
	"context"

	"github.com/google/uuid"
)

// Request is the input of one synthesis run
type Request struct {
	GenerationID uuid.UUID
	Text         string
	Description  string
}

// Engine turns text into a stored audio artifact
type Engine interface {
	// Synthesize produces the artifact and returns where it was stored
	//
	// Possible errors:
	// - ErrGenerationEngineFailure: If synthesis or storage failed
	Synthesize(ctx context.Context, req Request) (string, error)
}

// TokenEstimator prices a text before it is debited
type TokenEstimator interface {
	Estimate(text string) int64
}

// ArtifactStore persists generated audio
type ArtifactStore interface {
	// Save stores data under key and returns the location to record
	Save(ctx context.Context, key string, data []byte) (string, error)

	// Load reads back an artifact from a location returned by Save
	//
	// Possible errors:
	// - ErrArtifactNotFound: If nothing is stored at location
	Load(ctx context.Context, location string) ([]byte, error)
}
