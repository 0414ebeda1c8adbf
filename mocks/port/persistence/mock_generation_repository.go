package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// MockGenerationRepository is a mock implementation of persistence.GenerationRepository
type MockGenerationRepository struct {
	mock.Mock
}

// NewMockGenerationRepository creates a MockGenerationRepository and asserts its expectations at test cleanup
func NewMockGenerationRepository(t testingT) *MockGenerationRepository {
	m := &MockGenerationRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockGenerationRepository) Create(ctx context.Context, record *entity.GenerationRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockGenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.GenerationRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*entity.GenerationRecord)
	return record, args.Error(1)
}

func (m *MockGenerationRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.GenerationRecord, error) {
	args := m.Called(ctx, id, userID)
	record, _ := args.Get(0).(*entity.GenerationRecord)
	return record, args.Error(1)
}

func (m *MockGenerationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.GenerationRecord, error) {
	args := m.Called(ctx, userID, limit)
	records, _ := args.Get(0).([]*entity.GenerationRecord)
	return records, args.Error(1)
}

func (m *MockGenerationRepository) Update(ctx context.Context, record *entity.GenerationRecord) error {
	return m.Called(ctx, record).Error(0)
}
