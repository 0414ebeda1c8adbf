package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/persistence"
)

// MockUnitOfWork is a mock implementation of persistence.UnitOfWork.
// Do invokes fn directly unless an error is configured for it.
type MockUnitOfWork struct {
	mock.Mock
}

// NewMockUnitOfWork creates a MockUnitOfWork and asserts its expectations at test cleanup
func NewMockUnitOfWork(t testingT) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	register(&m.Mock, t)
	return m
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return ctx, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(txCtx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockUnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return m.Called(ctx).Get(0).(persistence.UserRepository)
}

func (m *MockUnitOfWork) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	return m.Called(ctx).Get(0).(persistence.BalanceRepository)
}

func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return m.Called(ctx).Get(0).(persistence.TransactionRepository)
}

func (m *MockUnitOfWork) GetExchangeRateRepository(ctx context.Context) persistence.ExchangeRateRepository {
	return m.Called(ctx).Get(0).(persistence.ExchangeRateRepository)
}

func (m *MockUnitOfWork) GetGenerationRepository(ctx context.Context) persistence.GenerationRepository {
	return m.Called(ctx).Get(0).(persistence.GenerationRepository)
}
