package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// InitialGrant is the number of tokens every new account starts with
var InitialGrant = decimal.NewFromInt(100)

// Balance is the spendable token total of one user
type Balance struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// NewBalance creates the balance row for a freshly registered user
func NewBalance(userID uuid.UUID, initial decimal.Decimal, timeProvider tport.TimeProvider) (*Balance, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalidUserID
	}
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s", errs.ErrInvalidAmount, initial.String())
	}
	return &Balance{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    initial,
		UpdatedAt: timeProvider.Now(),
	}, nil
}

// CanDebit checks if the balance covers amount
func (b *Balance) CanDebit(amount decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(amount)
}

// Credit adds tokens to the balance
func (b *Balance) Credit(tokens decimal.Decimal, timeProvider tport.TimeProvider) error {
	if !tokens.IsPositive() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, tokens.String())
	}
	b.Amount = b.Amount.Add(tokens)
	b.UpdatedAt = timeProvider.Now()
	return nil
}

// Debit subtracts amount, refusing to go below zero
func (b *Balance) Debit(amount decimal.Decimal, timeProvider tport.TimeProvider) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount.String())
	}
	if !b.CanDebit(amount) {
		return errs.NewInsufficientBalanceError(b.UserID.String(), "", amount.String(), b.Amount.String())
	}
	b.Amount = b.Amount.Sub(amount)
	b.UpdatedAt = timeProvider.Now()
	return nil
}
