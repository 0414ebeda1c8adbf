package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/persistence"
)

func TestExchangeRateService_SetRate(t *testing.T) {
	fixedTime := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		rate         decimal.Decimal
		setupMocks   func(uow *persistencemocks.MockUnitOfWork, repo *persistencemocks.MockExchangeRateRepository)
		wantPrevious string
		wantErr      error
	}{
		{
			name: "Updates and returns previous",
			rate: decimal.NewFromInt(2),
			setupMocks: func(uow *persistencemocks.MockUnitOfWork, repo *persistencemocks.MockExchangeRateRepository) {
				uow.On("Do", mock.Anything, mock.Anything).Return(nil)
				uow.On("GetExchangeRateRepository", mock.Anything).Return(repo)
				repo.On("GetForUpdate", mock.Anything).Return(&entity.ExchangeRate{Rate: entity.DefaultExchangeRate}, nil)
				repo.On("Update", mock.Anything, mock.MatchedBy(func(r *entity.ExchangeRate) bool {
					return r.Rate.Equal(decimal.NewFromInt(2)) && r.LastUpdate.Equal(fixedTime)
				})).Return(nil)
			},
			wantPrevious: "1.2",
		},
		{
			name:       "Zero rate is rejected before touching the store",
			rate:       decimal.Zero,
			setupMocks: func(*persistencemocks.MockUnitOfWork, *persistencemocks.MockExchangeRateRepository) {},
			wantErr:    errs.ErrInvalidRate,
		},
		{
			name: "Missing singleton",
			rate: decimal.NewFromInt(3),
			setupMocks: func(uow *persistencemocks.MockUnitOfWork, repo *persistencemocks.MockExchangeRateRepository) {
				uow.On("Do", mock.Anything, mock.Anything).Return(nil)
				uow.On("GetExchangeRateRepository", mock.Anything).Return(repo)
				repo.On("GetForUpdate", mock.Anything).Return(nil, errs.ErrExchangeRateNotFound)
			},
			wantErr: errs.ErrExchangeRateNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uow := persistencemocks.NewMockUnitOfWork(t)
			repo := persistencemocks.NewMockExchangeRateRepository(t)
			mockTime := coremocks.NewMockTimeProvider(t).Frozen(fixedTime)
			logger := coremocks.NewMockLogger(t).AllowAll()
			tc.setupMocks(uow, repo)

			svc := NewExchangeRateService(uow, repo, mockTime, logger)
			previous, err := svc.SetRate(context.Background(), tc.rate)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPrevious, previous.String())
		})
	}
}

func TestExchangeRateService_CreateAndEnsure(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t).Frozen(time.Now())
	logger := coremocks.NewMockLogger(t).AllowAll()

	t.Run("Duplicate create fails", func(t *testing.T) {
		repo := persistencemocks.NewMockExchangeRateRepository(t)
		repo.On("Create", mock.Anything, mock.Anything).Return(errs.ErrDuplicateSingleton)

		svc := NewExchangeRateService(persistencemocks.NewMockUnitOfWork(t), repo, mockTime, logger)
		_, err := svc.CreateRate(context.Background(), entity.DefaultExchangeRate)
		assert.ErrorIs(t, err, errs.ErrDuplicateSingleton)
	})

	t.Run("EnsureDefault tolerates an existing record", func(t *testing.T) {
		repo := persistencemocks.NewMockExchangeRateRepository(t)
		repo.On("Create", mock.Anything, mock.Anything).Return(errs.ErrDuplicateSingleton)

		svc := NewExchangeRateService(persistencemocks.NewMockUnitOfWork(t), repo, mockTime, logger)
		assert.NoError(t, svc.EnsureDefault(context.Background(), entity.DefaultExchangeRate))
	})

	t.Run("EnsureDefault surfaces other errors", func(t *testing.T) {
		repo := persistencemocks.NewMockExchangeRateRepository(t)
		repo.On("Create", mock.Anything, mock.Anything).Return(errs.ErrDatabaseConnection)

		svc := NewExchangeRateService(persistencemocks.NewMockUnitOfWork(t), repo, mockTime, logger)
		err := svc.EnsureDefault(context.Background(), entity.DefaultExchangeRate)
		assert.True(t, errors.Is(err, errs.ErrDatabaseConnection))
	})

	t.Run("GetRate reads the repository", func(t *testing.T) {
		repo := persistencemocks.NewMockExchangeRateRepository(t)
		repo.On("Get", mock.Anything).Return(&entity.ExchangeRate{Rate: entity.DefaultExchangeRate}, nil)

		svc := NewExchangeRateService(persistencemocks.NewMockUnitOfWork(t), repo, mockTime, logger)
		rate, err := svc.GetRate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1.2", rate.Rate.String())
	})
}
