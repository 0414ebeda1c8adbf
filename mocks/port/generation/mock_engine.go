package generation

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockEngine is a mock implementation of generation.Engine
type MockEngine struct {
	mock.Mock
}

// NewMockEngine creates a MockEngine and asserts its expectations at test cleanup
func NewMockEngine(t testingT) *MockEngine {
	m := &MockEngine{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEngine) Synthesize(ctx context.Context, req generation.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTokenEstimator is a mock implementation of generation.TokenEstimator
type MockTokenEstimator struct {
	mock.Mock
}

// NewMockTokenEstimator creates a MockTokenEstimator and asserts its expectations at test cleanup
func NewMockTokenEstimator(t testingT) *MockTokenEstimator {
	m := &MockTokenEstimator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenEstimator) Estimate(text string) int64 {
	return m.Called(text).Get(0).(int64)
}

// MockArtifactStore is a mock implementation of generation.ArtifactStore
type MockArtifactStore struct {
	mock.Mock
}

// NewMockArtifactStore creates a MockArtifactStore and asserts its expectations at test cleanup
func NewMockArtifactStore(t testingT) *MockArtifactStore {
	m := &MockArtifactStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockArtifactStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Load(ctx context.Context, location string) ([]byte, error) {
	args := m.Called(ctx, location)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
