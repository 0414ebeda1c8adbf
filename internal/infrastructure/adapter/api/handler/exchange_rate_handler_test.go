package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
	usecasemocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/usecase"
)

func newRateRouter(rates *usecasemocks.MockExchangeRateUseCase) *gin.Engine {
	h := NewExchangeRateHandler(rates, silent)
	router := gin.New()
	router.GET("/exchange-rate", h.Get)
	router.PUT("/exchange-rate", h.Set)
	return router
}

func TestExchangeRateHandler_Get(t *testing.T) {
	t.Run("current rate", func(t *testing.T) {
		rates := usecasemocks.NewMockExchangeRateUseCase(t)
		rates.On("GetRate", mock.Anything).Return(&entity.ExchangeRate{
			Rate: decimal.RequireFromString("1.2"), LastUpdate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}, nil).Once()

		w := serve(newRateRouter(rates), http.MethodGet, "/exchange-rate", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1.2", decode[dto.ExchangeRateResponse](t, w).Rate)
	})

	t.Run("not initialised", func(t *testing.T) {
		rates := usecasemocks.NewMockExchangeRateUseCase(t)
		rates.On("GetRate", mock.Anything).Return(nil, errs.ErrExchangeRateNotFound).Once()

		w := serve(newRateRouter(rates), http.MethodGet, "/exchange-rate", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExchangeRateHandler_Set(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setupMocks func(m *usecasemocks.MockExchangeRateUseCase)
		wantStatus int
	}{
		{
			name: "replaced",
			body: dto.SetRateRequest{Rate: "1.5"},
			setupMocks: func(m *usecasemocks.MockExchangeRateUseCase) {
				m.On("SetRate", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.RequireFromString("1.5"))
				})).Return(decimal.RequireFromString("1.2"), nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "zero rate",
			body:       dto.SetRateRequest{Rate: "0"},
			setupMocks: func(*usecasemocks.MockExchangeRateUseCase) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not a number",
			body:       dto.SetRateRequest{Rate: "abc"},
			setupMocks: func(*usecasemocks.MockExchangeRateUseCase) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "database down",
			body: dto.SetRateRequest{Rate: "2"},
			setupMocks: func(m *usecasemocks.MockExchangeRateUseCase) {
				m.On("SetRate", mock.Anything, mock.Anything).
					Return(decimal.Zero, errors.Join(errs.ErrDatabaseConnection, errors.New("dial tcp"))).Once()
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := usecasemocks.NewMockExchangeRateUseCase(t)
			tt.setupMocks(rates)

			w := serve(newRateRouter(rates), http.MethodPut, "/exchange-rate", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				resp := decode[dto.SetRateResponse](t, w)
				assert.Equal(t, "1.2", resp.PreviousRate)
				assert.Equal(t, "1.5", resp.Rate)
			}
		})
	}
}

func TestExchangeRateHandler_ServerErrorsHideDetail(t *testing.T) {
	rates := usecasemocks.NewMockExchangeRateUseCase(t)
	rates.On("GetRate", mock.Anything).Return(nil, errors.New("pq: relation does not exist")).Once()

	w := serve(newRateRouter(rates), http.MethodGet, "/exchange-rate", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errs.CodeInternalServer, resp.Code)
	assert.NotContains(t, resp.Message, "relation")
}
