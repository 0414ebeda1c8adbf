package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// MockExchangeRateRepository is a mock implementation of persistence.ExchangeRateRepository
type MockExchangeRateRepository struct {
	mock.Mock
}

// NewMockExchangeRateRepository creates a MockExchangeRateRepository and asserts its expectations at test cleanup
func NewMockExchangeRateRepository(t testingT) *MockExchangeRateRepository {
	m := &MockExchangeRateRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockExchangeRateRepository) Create(ctx context.Context, rate *entity.ExchangeRate) error {
	return m.Called(ctx, rate).Error(0)
}

func (m *MockExchangeRateRepository) Get(ctx context.Context) (*entity.ExchangeRate, error) {
	args := m.Called(ctx)
	rate, _ := args.Get(0).(*entity.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateRepository) GetForShare(ctx context.Context) (*entity.ExchangeRate, error) {
	args := m.Called(ctx)
	rate, _ := args.Get(0).(*entity.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateRepository) GetForUpdate(ctx context.Context) (*entity.ExchangeRate, error) {
	args := m.Called(ctx)
	rate, _ := args.Get(0).(*entity.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateRepository) Update(ctx context.Context, rate *entity.ExchangeRate) error {
	return m.Called(ctx, rate).Error(0)
}
