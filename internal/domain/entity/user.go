package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an account that owns a balance, transactions and generations
type User struct {
	ID           uuid.UUID // Unique identifier for the user
	Email        string    // Lowercased login email
	PasswordHash string    // bcrypt hash, never the raw password
	CreatedAt    time.Time // When the user was created
	UpdatedAt    time.Time // When the user was last updated
}

// NewUser creates a new user from an already hashed password
func NewUser(email, passwordHash string, timeProvider coreport.TimeProvider) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: empty password hash", errs.ErrInvalidRequest)
	}

	now := timeProvider.Now()
	return &User{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail trims and lowercases email and checks its shape
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidEmail, email)
	}
	return normalized, nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errs.ErrWeakPassword
	}
	return nil
}
