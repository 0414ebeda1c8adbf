package generation

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	genport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
)

// TaskProcessor runs one generation task on a worker and records the outcome
type TaskProcessor struct {
	genRepo      persistence.GenerationRepository
	engine       genport.Engine
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewTaskProcessor creates a new TaskProcessor
func NewTaskProcessor(
	genRepo persistence.GenerationRepository,
	engine genport.Engine,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) messaging.TaskHandler {
	return &TaskProcessor{
		genRepo:      genRepo,
		engine:       engine,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Handle synthesizes the task's text and moves its record to DONE or FAILED.
// A record that is already terminal is left alone and reported as handled.
func (p *TaskProcessor) Handle(ctx context.Context, task entity.GenerationTask) error {
	generationID, err := task.Validate()
	if err != nil {
		return err
	}

	log := p.logger.With(map[string]any{
		"task_id":       task.TaskID,
		"generation_id": task.GenerationID,
	})
	log.Debug("Handling generation task", nil)

	record, err := p.genRepo.GetByID(ctx, generationID)
	if err != nil {
		return err
	}

	// Records are stored as PROCESSING when requested, so this only screens out terminal ones
	if err := record.MarkProcessing(p.timeProvider); err != nil {
		if errors.Is(err, errs.ErrInvalidStatusTransition) {
			log.Info("Generation already finished, skipping", map[string]any{
				"status": string(record.Status),
			})
			return nil
		}
		return err
	}

	location, synthErr := p.engine.Synthesize(ctx, genport.Request{
		GenerationID: generationID,
		Text:         task.Text,
		Description:  task.Description,
	})
	if synthErr != nil {
		return p.fail(ctx, log, record, task, "synthesize", synthErr)
	}

	pending := *record
	if err := record.MarkDone(location, p.timeProvider); err != nil {
		return err
	}
	if err := p.genRepo.Update(ctx, record); err != nil {
		if errors.Is(err, errs.ErrInvalidStatusTransition) {
			log.Warn("Generation finished concurrently, result discarded", map[string]any{
				"location": location,
			})
			return nil
		}
		log.Error("Failed to store generation result", map[string]any{
			"location": location,
			"error":    err.Error(),
		})
		*record = pending
		_ = p.markFailed(ctx, log, record, "store result: "+err.Error())
		return errs.NewGenerationError(task.GenerationID, task.TaskID, "persist", err)
	}

	log.Info("Generation completed", map[string]any{
		"location": location,
	})
	return nil
}

func (p *TaskProcessor) fail(
	ctx context.Context,
	log coreport.Logger,
	record *entity.GenerationRecord,
	task entity.GenerationTask,
	stage string,
	cause error,
) error {
	log.Error("Generation failed", map[string]any{
		"stage": stage,
		"error": cause.Error(),
	})

	if err := p.markFailed(ctx, log, record, cause.Error()); err != nil {
		return err
	}

	if errors.Is(cause, errs.ErrGenerationEngineFailure) {
		return errs.NewGenerationError(task.GenerationID, task.TaskID, stage, cause)
	}
	return errs.NewGenerationError(task.GenerationID, task.TaskID, stage, errs.ErrGenerationEngineFailure)
}

// markFailed moves a PROCESSING record to FAILED and writes it. A write error is
// only logged; the caller reports the original failure.
func (p *TaskProcessor) markFailed(
	ctx context.Context,
	log coreport.Logger,
	record *entity.GenerationRecord,
	reason string,
) error {
	if err := record.MarkFailed(reason, p.timeProvider); err != nil {
		return err
	}
	if err := p.genRepo.Update(ctx, record); err != nil && !errors.Is(err, errs.ErrInvalidStatusTransition) {
		log.Error("Failed to store generation failure", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}
