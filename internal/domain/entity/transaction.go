package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

// Transaction types
const (
	TypeCredit TransactionType = "CREDIT"
	TypeDebit  TransactionType = "DEBIT"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	TransactionProcessing TransactionStatus = "PROCESSING"
	TransactionDone       TransactionStatus = "DONE"
	TransactionFailed     TransactionStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed from s
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionDone || s == TransactionFailed
}

// IsValid reports whether t is one of the settleable types
func (t TransactionType) IsValid() bool {
	return t == TypeCredit || t == TypeDebit
}

// Transaction is a single ledger entry that moves a user's token balance
type Transaction struct {
	ID            uuid.UUID         // Unique identifier
	UserID        uuid.UUID         // Owner of the transaction
	Amount        decimal.Decimal   // Input amount: currency units for CREDIT, tokens for DEBIT
	Type          TransactionType   // CREDIT or DEBIT
	Status        TransactionStatus // PROCESSING until settled
	Rate          decimal.Decimal   // Exchange rate applied at settlement (CREDIT only)
	Tokens        decimal.Decimal   // Token effect on the balance once DONE
	ResultBalance decimal.Decimal   // Balance right after settlement
	ErrorMessage  string            // Why the transaction FAILED
	CreatedAt     time.Time         // Timestamp of creation
	ProcessedAt   *time.Time        // When the transaction reached a terminal status
}

// NewTransaction creates a PROCESSING transaction. The type is not checked here so that
// settlement can record an unsupported type as a FAILED entry.
func NewTransaction(
	userID uuid.UUID,
	amount decimal.Decimal,
	txType string,
	timeProvider tport.TimeProvider,
) (*Transaction, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalidUserID
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount.String())
	}
	if txType == "" {
		return nil, fmt.Errorf("%w: empty type", errs.ErrInvalidTransactionType)
	}

	return &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Type:      TransactionType(txType),
		Status:    TransactionProcessing,
		CreatedAt: timeProvider.Now(),
	}, nil
}

// NewGrantTransaction records the initial token grant as an already settled CREDIT
func NewGrantTransaction(userID uuid.UUID, tokens decimal.Decimal, timeProvider tport.TimeProvider) *Transaction {
	now := timeProvider.Now()
	return &Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        tokens,
		Type:          TypeCredit,
		Status:        TransactionDone,
		Rate:          decimal.NewFromInt(1),
		Tokens:        tokens,
		ResultBalance: tokens,
		CreatedAt:     now,
		ProcessedAt:   &now,
	}
}

// IsTerminal returns true once the transaction is DONE or FAILED
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// IsCredit returns true if this transaction increases the user's balance
func (t *Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// IsDebit returns true if this transaction decreases the user's balance
func (t *Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// MarkAsDone records a successful settlement
func (t *Transaction) MarkAsDone(timeProvider tport.TimeProvider, tokens, rate, resultBalance decimal.Decimal) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: transaction %s is already %s", errs.ErrInvalidStatusTransition, t.ID, t.Status)
	}
	now := timeProvider.Now()
	t.ProcessedAt = &now
	t.Tokens = tokens
	t.Rate = rate
	t.ResultBalance = resultBalance
	t.Status = TransactionDone
	return nil
}

// MarkAsFailed records a settlement that left the balance untouched
func (t *Transaction) MarkAsFailed(timeProvider tport.TimeProvider, errorMessage string) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: transaction %s is already %s", errs.ErrInvalidStatusTransition, t.ID, t.Status)
	}
	now := timeProvider.Now()
	t.ProcessedAt = &now
	t.Status = TransactionFailed
	t.ErrorMessage = errorMessage
	return nil
}

// ParseTransactionStatus converts a stored value back into a TransactionStatus
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch status := TransactionStatus(s); status {
	case TransactionProcessing, TransactionDone, TransactionFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidStatus, s)
	}
}
