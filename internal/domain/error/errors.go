package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientBalance    = 4001
	CodeInvalidAmount          = 4002
	CodeInvalidUserID          = 4003
	CodeInvalidRate            = 4004
	CodeConstraintViolation    = 4005
	CodeInvalidTransactionType = 4006
	CodeInvalidTransactionID   = 4007
	CodeInvalidGenerationID    = 4008
	CodeEmptyText              = 4009
	CodeInvalidEmail           = 4010
	CodeWeakPassword           = 4011
	CodeInvalidRequest         = 4012
	CodeArtifactNotReady       = 4013
	CodeUserNotFound           = 4040
	CodeTransactionNotFound    = 4041
	CodeGenerationNotFound     = 4042
	CodeBalanceNotFound        = 4043
	CodeExchangeRateNotFound   = 4044
	CodeArtifactNotFound       = 4045
	CodeDuplicateSingleton     = 4090
	CodeEmailTaken             = 4091
	CodeInvalidTransition      = 4092
	CodeUserLocked             = 4230

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabase           = 5001
	CodePublishUnavailable = 5030
	CodeEngineFailure      = 5031
)

// Ledger errors
var (
	// ErrInsufficientBalance is returned when a debit exceeds the available tokens
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when a transaction amount is not strictly positive
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidRate is returned when an exchange rate is not strictly positive
	ErrInvalidRate = errors.New("exchange rate must be greater than zero")

	// ErrInvalidTransactionType is returned when a transaction type is neither CREDIT nor DEBIT
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidStatus is returned when a status value is not one of the allowed values
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidStatusTransition is returned when a terminal record is asked to change state
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrBalanceNotFound is returned when a user has no balance row
	ErrBalanceNotFound = errors.New("balance not found")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrExchangeRateNotFound is returned when the exchange rate has never been initialised
	ErrExchangeRateNotFound = errors.New("exchange rate not found")

	// ErrDuplicateSingleton is returned when a second exchange rate record is created
	ErrDuplicateSingleton = errors.New("exchange rate already exists")

	// ErrInvalidUserID is returned when a user ID is empty or not a valid UUID
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrInvalidTransactionID is returned when a transaction ID is empty or not a valid UUID
	ErrInvalidTransactionID = errors.New("invalid transaction ID")
)

// Account errors
var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidRequest = errors.New("invalid request")
)

// Generation pipeline errors
var (
	// ErrEmptyText is returned when a generation is requested for blank text
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidGenerationID is returned when a generation ID is empty or not a valid UUID
	ErrInvalidGenerationID = errors.New("invalid generation ID")

	// ErrGenerationNotFound is returned when the generation record doesn't exist for the user
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrPublishUnavailable is returned when the broker did not accept a task within the retry budget
	ErrPublishUnavailable = errors.New("task publisher unavailable")

	// ErrMalformedTask is returned when a task message body cannot be decoded
	ErrMalformedTask = errors.New("malformed generation task")

	// ErrMissingField is returned when a decoded task lacks a required field
	ErrMissingField = errors.New("generation task is missing a required field")

	// ErrGenerationEngineFailure is returned when synthesis or artifact storage fails
	ErrGenerationEngineFailure = errors.New("generation engine failure")

	// ErrArtifactNotReady is returned when audio is requested before the generation is DONE
	ErrArtifactNotReady = errors.New("audio is not ready")

	// ErrArtifactNotFound is returned when the stored audio cannot be located
	ErrArtifactNotFound = errors.New("audio artifact not found")
)

// Infrastructure errors
var (
	// ErrUserLocked is returned when a user is locked by another settlement
	ErrUserLocked = errors.New("user is locked by another operation")

	// ErrConcurrentUpdate is returned when the store aborts a transaction because of a conflicting one
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidRate):
		return CodeInvalidRate
	case errors.Is(err, ErrInvalidTransactionType):
		return CodeInvalidTransactionType
	case errors.Is(err, ErrInvalidTransactionID):
		return CodeInvalidTransactionID
	case errors.Is(err, ErrInvalidGenerationID):
		return CodeInvalidGenerationID
	case errors.Is(err, ErrEmptyText):
		return CodeEmptyText
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrWeakPassword):
		return CodeWeakPassword
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrArtifactNotReady):
		return CodeArtifactNotReady
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrGenerationNotFound):
		return CodeGenerationNotFound
	case errors.Is(err, ErrBalanceNotFound):
		return CodeBalanceNotFound
	case errors.Is(err, ErrExchangeRateNotFound):
		return CodeExchangeRateNotFound
	case errors.Is(err, ErrArtifactNotFound):
		return CodeArtifactNotFound
	case errors.Is(err, ErrDuplicateSingleton):
		return CodeDuplicateSingleton
	case errors.Is(err, ErrEmailTaken):
		return CodeEmailTaken
	case errors.Is(err, ErrInvalidStatusTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrUserLocked):
		return CodeUserLocked
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrPublishUnavailable):
		return CodePublishUnavailable
	case errors.Is(err, ErrGenerationEngineFailure):
		return CodeEngineFailure
	case errors.Is(err, ErrDatabaseConnection), errors.Is(err, ErrConcurrentUpdate):
		return CodeDatabase
	default:
		return CodeInternalServer
	}
}

// BalanceError represents an error related to balance operations
type BalanceError struct {
	UserID         string
	Amount         string
	CurrentBalance string
	Err            error
}

// Error implements the error interface for BalanceError
func (e *BalanceError) Error() string {
	return fmt.Sprintf("balance operation failed for user %s (current balance: %s, amount: %s): %v",
		e.UserID, e.CurrentBalance, e.Amount, e.Err)
}

// Unwrap returns the underlying error
func (e *BalanceError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *BalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "balance_error",
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"current_balance": e.CurrentBalance,
		"error":           e.Err.Error(),
		"error_code":      ErrorCode(e.Err),
	}
}

// NewBalanceError wraps err with the balance context it occurred in
func NewBalanceError(userID, amount, currentBalance string, err error) error {
	return &BalanceError{
		UserID:         userID,
		Amount:         amount,
		CurrentBalance: currentBalance,
		Err:            err,
	}
}

// TransactionError represents an error related to transaction settlement
type TransactionError struct {
	TransactionID string
	UserID        string
	Type          string
	Status        string
	Amount        string
	Reason        string
	Err           error
}

// Error implements the error interface for TransactionError
func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error for ID %s (user: %s, amount: %s): %s - %v",
		e.TransactionID, e.UserID, e.Amount, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *TransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "transaction_error",
		"transaction_id": e.TransactionID,
		"user_id":        e.UserID,
		"type":           e.Type,
		"status":         e.Status,
		"amount":         e.Amount,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewTransactionError creates a detailed transaction error
func NewTransactionError(transactionID, userID, txType, status, amount, reason string, err error) error {
	return &TransactionError{
		TransactionID: transactionID,
		UserID:        userID,
		Type:          txType,
		Status:        status,
		Amount:        amount,
		Reason:        reason,
		Err:           err,
	}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID        string
	TransactionID string
	Amount        string
	CurrBalance   string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %s: required %s, available %s",
		e.UserID, e.Amount, e.CurrBalance)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_balance",
		"user_id":         e.UserID,
		"transaction_id":  e.TransactionID,
		"amount":          e.Amount,
		"current_balance": e.CurrBalance,
		"error_code":      CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID, transactionID, amount, currentBalance string) error {
	return &InsufficientBalanceError{
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		CurrBalance:   currentBalance,
	}
}

// GenerationError describes a failure while running or recording a generation
type GenerationError struct {
	GenerationID string
	TaskID       string
	Stage        string
	Err          error
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s failed during %s: %v", e.GenerationID, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *GenerationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":    "generation_error",
		"generation_id": e.GenerationID,
		"task_id":       e.TaskID,
		"stage":         e.Stage,
		"error":         e.Err.Error(),
		"error_code":    ErrorCode(e.Err),
	}
}

// NewGenerationError creates a generation error for the given pipeline stage
func NewGenerationError(generationID, taskID, stage string, err error) error {
	return &GenerationError{
		GenerationID: generationID,
		TaskID:       taskID,
		Stage:        stage,
		Err:          err,
	}
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBalanceNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrGenerationNotFound) ||
		errors.Is(err, ErrExchangeRateNotFound) ||
		errors.Is(err, ErrArtifactNotFound)
}

// IsValidationError checks if the error was caused by bad caller input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidTransactionID) ||
		errors.Is(err, ErrInvalidGenerationID) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsUserLockedError checks if the error is related to a locked user
func IsUserLockedError(err error) bool {
	return errors.Is(err, ErrUserLocked)
}

// IsTransientError reports whether retrying the same operation may succeed
func IsTransientError(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrUserLocked)
}
