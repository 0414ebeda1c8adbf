package messaging

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTaskPublisher is a mock implementation of messaging.TaskPublisher
type MockTaskPublisher struct {
	mock.Mock
}

// NewMockTaskPublisher creates a MockTaskPublisher and asserts its expectations at test cleanup
func NewMockTaskPublisher(t testingT) *MockTaskPublisher {
	m := &MockTaskPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTaskPublisher) Publish(ctx context.Context, task entity.GenerationTask) error {
	return m.Called(ctx, task).Error(0)
}

// MockTaskHandler is a mock implementation of messaging.TaskHandler
type MockTaskHandler struct {
	mock.Mock
}

// NewMockTaskHandler creates a MockTaskHandler and asserts its expectations at test cleanup
func NewMockTaskHandler(t testingT) *MockTaskHandler {
	m := &MockTaskHandler{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTaskHandler) Handle(ctx context.Context, task entity.GenerationTask) error {
	return m.Called(ctx, task).Error(0)
}
