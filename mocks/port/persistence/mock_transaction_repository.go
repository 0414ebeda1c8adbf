package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// MockTransactionRepository is a mock implementation of persistence.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a MockTransactionRepository and asserts its expectations at test cleanup
func NewMockTransactionRepository(t testingT) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	return m.Called(ctx, transaction).Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, id)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, id)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	return m.Called(ctx, transaction).Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txns, _ := args.Get(0).([]*entity.Transaction)
	return txns, args.Error(1)
}
