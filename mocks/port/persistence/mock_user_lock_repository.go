package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// MockUserLockRepository is a mock implementation of persistence.UserLockRepository
type MockUserLockRepository struct {
	mock.Mock
}

// NewMockUserLockRepository creates a MockUserLockRepository and asserts its expectations at test cleanup
func NewMockUserLockRepository(t testingT) *MockUserLockRepository {
	m := &MockUserLockRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockUserLockRepository) AcquireLock(ctx context.Context, userID uuid.UUID, ttl core.Duration) error {
	return m.Called(ctx, userID, ttl).Error(0)
}

func (m *MockUserLockRepository) ReleaseLock(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
