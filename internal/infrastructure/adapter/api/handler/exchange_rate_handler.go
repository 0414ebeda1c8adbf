package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
)

// ExchangeRateHandler exposes the currency-to-token rate
type ExchangeRateHandler struct {
	rates  usecase.ExchangeRateUseCase
	logger coreport.Logger
}

// NewExchangeRateHandler creates a new exchange rate handler instance
func NewExchangeRateHandler(rates usecase.ExchangeRateUseCase, logger coreport.Logger) *ExchangeRateHandler {
	return &ExchangeRateHandler{
		rates:  rates,
		logger: logger,
	}
}

// Get handles GET /exchange-rate
func (h *ExchangeRateHandler) Get(c *gin.Context) {
	rate, err := h.rates.GetRate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewExchangeRateResponse(rate))
}

// Set handles PUT /exchange-rate
func (h *ExchangeRateHandler) Set(c *gin.Context) {
	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errs.ErrInvalidRequest, "Invalid request format: "+err.Error())
		return
	}

	rate, err := entity.ParseRate(req.Rate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	previous, err := h.rates.SetRate(c.Request.Context(), rate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.SetRateResponse{
		PreviousRate: entity.FormatTokens(previous),
		Rate:         entity.FormatTokens(rate),
	})
}
