package database

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/repository"
)

// ErrorMapper maps errors raised by the unit of work itself (begin, commit, rollback)
// to domain errors. Repository errors are already mapped and pass through unchanged.
type ErrorMapper struct {
	classifier *repository.ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: repository.NewErrorClassifier()}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Already a domain error
	if errs.ErrorCode(err) != errs.CodeInternalServer || errors.Is(err, errs.ErrInternalServer) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation: %s", errs.ErrDatabaseConnection, operation, err.Error())
	}

	switch m.classifier.Classify(err) {
	case repository.LockError:
		return fmt.Errorf("%w: %s", errs.ErrConcurrentUpdate, err.Error())
	case repository.DuplicateKeyError, repository.ConstraintError, repository.ForeignKeyError:
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, err.Error())
	default:
		return fmt.Errorf("%w: %s operation: %s", errs.ErrDatabaseConnection, operation, err.Error())
	}
}
