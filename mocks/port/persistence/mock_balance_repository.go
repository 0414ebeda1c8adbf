package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// MockBalanceRepository is a mock implementation of persistence.BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

// NewMockBalanceRepository creates a MockBalanceRepository and asserts its expectations at test cleanup
func NewMockBalanceRepository(t testingT) *MockBalanceRepository {
	m := &MockBalanceRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockBalanceRepository) Create(ctx context.Context, balance *entity.Balance) error {
	return m.Called(ctx, balance).Error(0)
}

func (m *MockBalanceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	args := m.Called(ctx, userID)
	balance, _ := args.Get(0).(*entity.Balance)
	return balance, args.Error(1)
}

func (m *MockBalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	args := m.Called(ctx, userID)
	balance, _ := args.Get(0).(*entity.Balance)
	return balance, args.Error(1)
}

func (m *MockBalanceRepository) Update(ctx context.Context, balance *entity.Balance) error {
	return m.Called(ctx, balance).Error(0)
}
