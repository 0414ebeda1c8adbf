package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// UserRepository defines essential methods to interact with user data
type UserRepository interface {
	// Create stores a new user
	//
	// Possible errors:
	// - ErrEmailTaken: If a user with the same email already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// GetByEmail retrieves a user by its normalized email
	//
	// Possible errors:
	// - ErrUserNotFound: If no user uses this email
	// - ErrDatabaseConnection: If database connection fails
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Exists checks whether a user with the given ID exists
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
