package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
	usecasemocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/usecase"
)

func newGenerationRouter(generations *usecasemocks.MockGenerationUseCase) *gin.Engine {
	h := NewGenerationHandler(generations, silent)
	router := gin.New()
	router.POST("/user/:userId/generations", h.Request)
	router.GET("/user/:userId/generations", h.List)
	router.GET("/user/:userId/generations/:generationId", h.Get)
	router.GET("/user/:userId/generations/:generationId/audio", h.Audio)
	return router
}

func TestGenerationHandler_Request(t *testing.T) {
	userID := uuid.New()
	path := "/user/" + userID.String() + "/generations"

	tests := []struct {
		name       string
		body       any
		setupMocks func(m *usecasemocks.MockGenerationUseCase)
		wantStatus int
		wantState  string
		wantCode   int
	}{
		{
			name: "accepted",
			body: dto.GenerationRequest{Text: "hello there"},
			setupMocks: func(m *usecasemocks.MockGenerationUseCase) {
				m.On("RequestGeneration", mock.Anything, userID, "hello there").Return(&entity.GenerationRecord{
					ID: uuid.New(), UserID: userID, Text: "hello there", TokensSpent: 4, Status: entity.GenerationProcessing,
				}, nil).Once()
			},
			wantStatus: http.StatusAccepted,
			wantState:  "PROCESSING",
		},
		{
			name: "dispatch failed",
			body: dto.GenerationRequest{Text: "hello there"},
			setupMocks: func(m *usecasemocks.MockGenerationUseCase) {
				m.On("RequestGeneration", mock.Anything, userID, "hello there").Return(&entity.GenerationRecord{
					ID: uuid.New(), UserID: userID, Text: "hello there", TokensSpent: 4,
					Status: entity.GenerationFailed, ErrorMessage: "publish unavailable",
				}, nil).Once()
			},
			wantStatus: http.StatusAccepted,
			wantState:  "FAILED",
		},
		{
			name: "insufficient balance",
			body: dto.GenerationRequest{Text: "hello there"},
			setupMocks: func(m *usecasemocks.MockGenerationUseCase) {
				m.On("RequestGeneration", mock.Anything, userID, "hello there").
					Return(nil, errs.NewInsufficientBalanceError(userID.String(), "t", "500", "460")).Once()
			},
			wantStatus: http.StatusPaymentRequired,
			wantCode:   errs.CodeInsufficientBalance,
		},
		{
			name: "blank text",
			body: dto.GenerationRequest{Text: "  "},
			setupMocks: func(m *usecasemocks.MockGenerationUseCase) {
				m.On("RequestGeneration", mock.Anything, userID, "  ").Return(nil, errs.ErrEmptyText).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   errs.CodeEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generations := usecasemocks.NewMockGenerationUseCase(t)
			tt.setupMocks(generations)

			w := serve(newGenerationRouter(generations), http.MethodPost, path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantState != "" {
				assert.Equal(t, tt.wantState, decode[dto.GenerationResponse](t, w).Status)
			} else {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestGenerationHandler_Get(t *testing.T) {
	userID, generationID := uuid.New(), uuid.New()
	path := "/user/" + userID.String() + "/generations/" + generationID.String()

	t.Run("found", func(t *testing.T) {
		generations := usecasemocks.NewMockGenerationUseCase(t)
		location := "output/" + generationID.String() + ".wav"
		generations.On("GetStatus", mock.Anything, userID, generationID).Return(&entity.GenerationRecord{
			ID: generationID, UserID: userID, Status: entity.GenerationDone, ResultLocation: &location,
		}, nil).Once()

		w := serve(newGenerationRouter(generations), http.MethodGet, path, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[dto.GenerationResponse](t, w)
		assert.Equal(t, "DONE", resp.Status)
		assert.Equal(t, location, *resp.ResultLocation)
	})

	t.Run("other user's generation", func(t *testing.T) {
		generations := usecasemocks.NewMockGenerationUseCase(t)
		generations.On("GetStatus", mock.Anything, userID, generationID).Return(nil, errs.ErrGenerationNotFound).Once()

		w := serve(newGenerationRouter(generations), http.MethodGet, path, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGenerationHandler_Audio(t *testing.T) {
	userID, generationID := uuid.New(), uuid.New()
	path := "/user/" + userID.String() + "/generations/" + generationID.String() + "/audio"

	t.Run("done", func(t *testing.T) {
		generations := usecasemocks.NewMockGenerationUseCase(t)
		generations.On("GetAudio", mock.Anything, userID, generationID).Return([]byte("RIFF"), nil).Once()

		w := serve(newGenerationRouter(generations), http.MethodGet, path, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
		assert.Equal(t, "RIFF", w.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		generations := usecasemocks.NewMockGenerationUseCase(t)
		generations.On("GetAudio", mock.Anything, userID, generationID).Return(nil, errs.ErrArtifactNotReady).Once()

		w := serve(newGenerationRouter(generations), http.MethodGet, path, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGenerationHandler_List(t *testing.T) {
	userID := uuid.New()
	generations := usecasemocks.NewMockGenerationUseCase(t)
	generations.On("List", mock.Anything, userID, 10).Return([]*entity.GenerationRecord{
		{ID: uuid.New(), UserID: userID, Status: entity.GenerationDone},
		{ID: uuid.New(), UserID: userID, Status: entity.GenerationFailed},
	}, nil).Once()

	w := serve(newGenerationRouter(generations), http.MethodGet, "/user/"+userID.String()+"/generations?limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.GenerationListResponse](t, w).Generations, 2)
}
