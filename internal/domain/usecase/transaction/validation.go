package transaction

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// Listing bounds
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// TransactionValidator provides validation for transaction requests
type TransactionValidator struct{}

// NewTransactionValidator creates a new TransactionValidator
func NewTransactionValidator() *TransactionValidator {
	return &TransactionValidator{}
}

// ValidateCreate checks the fields of a create request. The type is only required
// to be present; unsupported types are settled as FAILED.
func (v *TransactionValidator) ValidateCreate(userID uuid.UUID, amount decimal.Decimal, txType string) error {
	if userID == uuid.Nil {
		return errs.ErrInvalidUserID
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount.String())
	}
	if txType == "" {
		return fmt.Errorf("%w: empty type", errs.ErrInvalidTransactionType)
	}
	return nil
}

// NormalizeLimit clamps a list limit into [1, MaxListLimit]
func (v *TransactionValidator) NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
