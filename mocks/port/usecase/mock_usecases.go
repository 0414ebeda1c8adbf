package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t testingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockTransactionUseCase is a mock implementation of usecase.TransactionUseCase
type MockTransactionUseCase struct {
	mock.Mock
}

// NewMockTransactionUseCase creates a MockTransactionUseCase and asserts its expectations at test cleanup
func NewMockTransactionUseCase(t testingT) *MockTransactionUseCase {
	m := &MockTransactionUseCase{}
	register(&m.Mock, t)
	return m
}

func (m *MockTransactionUseCase) Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType string) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, amount, txType)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionUseCase) Settle(ctx context.Context, transactionID uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, transactionID)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionUseCase) CreateAndSettle(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType string) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, amount, txType)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionUseCase) Get(ctx context.Context, userID, transactionID uuid.UUID) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	txn, _ := args.Get(0).(*entity.Transaction)
	return txn, args.Error(1)
}

func (m *MockTransactionUseCase) List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txns, _ := args.Get(0).([]*entity.Transaction)
	return txns, args.Error(1)
}

// MockAccountUseCase is a mock implementation of usecase.AccountUseCase
type MockAccountUseCase struct {
	mock.Mock
}

// NewMockAccountUseCase creates a MockAccountUseCase and asserts its expectations at test cleanup
func NewMockAccountUseCase(t testingT) *MockAccountUseCase {
	m := &MockAccountUseCase{}
	register(&m.Mock, t)
	return m
}

func (m *MockAccountUseCase) Register(ctx context.Context, email, password string) (*entity.User, *entity.Balance, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*entity.User)
	balance, _ := args.Get(1).(*entity.Balance)
	return user, balance, args.Error(2)
}

func (m *MockAccountUseCase) GetBalance(ctx context.Context, userID uuid.UUID) (*entity.Balance, error) {
	args := m.Called(ctx, userID)
	balance, _ := args.Get(0).(*entity.Balance)
	return balance, args.Error(1)
}

func (m *MockAccountUseCase) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockExchangeRateUseCase is a mock implementation of usecase.ExchangeRateUseCase
type MockExchangeRateUseCase struct {
	mock.Mock
}

// NewMockExchangeRateUseCase creates a MockExchangeRateUseCase and asserts its expectations at test cleanup
func NewMockExchangeRateUseCase(t testingT) *MockExchangeRateUseCase {
	m := &MockExchangeRateUseCase{}
	register(&m.Mock, t)
	return m
}

func (m *MockExchangeRateUseCase) GetRate(ctx context.Context) (*entity.ExchangeRate, error) {
	args := m.Called(ctx)
	rate, _ := args.Get(0).(*entity.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateUseCase) SetRate(ctx context.Context, rate decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, rate)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateUseCase) CreateRate(ctx context.Context, rate decimal.Decimal) (*entity.ExchangeRate, error) {
	args := m.Called(ctx, rate)
	r, _ := args.Get(0).(*entity.ExchangeRate)
	return r, args.Error(1)
}

func (m *MockExchangeRateUseCase) EnsureDefault(ctx context.Context, rate decimal.Decimal) error {
	return m.Called(ctx, rate).Error(0)
}

// MockGenerationUseCase is a mock implementation of usecase.GenerationUseCase
type MockGenerationUseCase struct {
	mock.Mock
}

// NewMockGenerationUseCase creates a MockGenerationUseCase and asserts its expectations at test cleanup
func NewMockGenerationUseCase(t testingT) *MockGenerationUseCase {
	m := &MockGenerationUseCase{}
	register(&m.Mock, t)
	return m
}

func (m *MockGenerationUseCase) RequestGeneration(ctx context.Context, userID uuid.UUID, text string) (*entity.GenerationRecord, error) {
	args := m.Called(ctx, userID, text)
	record, _ := args.Get(0).(*entity.GenerationRecord)
	return record, args.Error(1)
}

func (m *MockGenerationUseCase) GetStatus(ctx context.Context, userID, generationID uuid.UUID) (*entity.GenerationRecord, error) {
	args := m.Called(ctx, userID, generationID)
	record, _ := args.Get(0).(*entity.GenerationRecord)
	return record, args.Error(1)
}

func (m *MockGenerationUseCase) List(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error) {
	args := m.Called(ctx, userID, limit)
	records, _ := args.Get(0).([]*entity.GenerationRecord)
	return records, args.Error(1)
}

func (m *MockGenerationUseCase) GetAudio(ctx context.Context, userID, generationID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID, generationID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
