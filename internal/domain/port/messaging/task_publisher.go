package messaging

import (
	"context"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// TaskPublisher hands generation tasks to the durable task channel
type TaskPublisher interface {
	// Publish delivers task once per call. A nil error means the broker accepted it.
	//
	// Possible errors:
	// - ErrPublishUnavailable: If the task was not accepted within the retry budget
	Publish(ctx context.Context, task entity.GenerationTask) error
}

// TaskHandler runs one decoded task on the worker side
type TaskHandler interface {
	// Handle executes the task and records its outcome
	//
	// Possible errors:
	// - ErrGenerationNotFound: If the referenced record does not exist
	// - ErrGenerationEngineFailure: If synthesis or artifact storage failed
	// - ErrDatabaseConnection: If the outcome could not be stored
	Handle(ctx context.Context, task entity.GenerationTask) error
}
