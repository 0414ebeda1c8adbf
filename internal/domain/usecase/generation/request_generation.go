package generation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// RequestGeneration debits the estimated cost, stores a PROCESSING record and publishes its task.
//
// When the task cannot be published the record is marked FAILED and returned with a nil
// error. The debit is kept.
func (s *Service) RequestGeneration(ctx context.Context, userID uuid.UUID, text string) (*entity.GenerationRecord, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalidUserID
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrEmptyText
	}

	cost := s.estimator.Estimate(text)
	s.logger.Debug("Requesting generation", map[string]any{
		"user_id": userID.String(),
		"tokens":  cost,
	})

	debit, err := s.transactions.CreateAndSettle(ctx, userID, decimal.NewFromInt(cost), string(entity.TypeDebit))
	if err != nil {
		return nil, err
	}
	if debit.Status != entity.TransactionDone {
		current := ""
		if balance, balanceErr := s.balanceRepo.GetByUserID(ctx, userID); balanceErr == nil {
			current = balance.Amount.String()
		}
		s.logger.Info("Generation rejected", map[string]any{
			"user_id":        userID.String(),
			"transaction_id": debit.ID.String(),
			"reason":         debit.ErrorMessage,
		})
		return nil, errs.NewInsufficientBalanceError(userID.String(), debit.ID.String(), debit.Amount.String(), current)
	}

	record, err := entity.NewGenerationRecord(userID, text, cost, s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := s.genRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to store generation record after debit", map[string]any{
			"user_id":        userID.String(),
			"transaction_id": debit.ID.String(),
			"error":          err.Error(),
		})
		return nil, err
	}

	task := entity.NewGenerationTask(record, s.config.Description, s.timeProvider)

	publishCtx, cancel := s.timeProvider.WithTimeout(ctx, s.config.PublishTimeout)
	publishErr := s.publisher.Publish(publishCtx, task)
	cancel()

	if publishErr != nil {
		s.logger.Warn("Generation task not dispatched", map[string]any{
			"generation_id": record.ID.String(),
			"task_id":       task.TaskID,
			"error":         publishErr.Error(),
		})
		if err := record.MarkFailed(publishErr.Error(), s.timeProvider); err != nil {
			return nil, err
		}
		if err := s.genRepo.Update(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}

	s.logger.Info("Generation dispatched", map[string]any{
		"generation_id":  record.ID.String(),
		"task_id":        task.TaskID,
		"transaction_id": debit.ID.String(),
		"tokens":         cost,
	})
	return record, nil
}
