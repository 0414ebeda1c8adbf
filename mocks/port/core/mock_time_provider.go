package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// MockTimeProvider is a mock implementation of core.TimeProvider
type MockTimeProvider struct {
	mock.Mock
}

// NewMockTimeProvider creates a MockTimeProvider and asserts its expectations at test cleanup
func NewMockTimeProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTimeProvider {
	m := &MockTimeProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Frozen answers Now with at, makes Sleep return immediately and
// delegates WithTimeout to the real context package
func (m *MockTimeProvider) Frozen(at time.Time) *MockTimeProvider {
	m.On("Now").Return(at).Maybe()
	m.On("Since", mock.Anything).Return(core.Duration(0)).Maybe()
	m.On("Sleep", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("WithTimeout", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	return m
}

func (m *MockTimeProvider) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockTimeProvider) Since(t time.Time) core.Duration {
	args := m.Called(t)
	return args.Get(0).(core.Duration)
}

func (m *MockTimeProvider) Sleep(ctx context.Context, d core.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	args := m.Called(ctx, timeout)
	if args.Get(0) == nil {
		return context.WithTimeout(ctx, timeout.Std())
	}
	return args.Get(0).(context.Context), args.Get(1).(context.CancelFunc)
}
