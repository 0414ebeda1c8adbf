package dto

import (
	"time"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// ExchangeRateResponse represents the current rate
type ExchangeRateResponse struct {
	Rate       string    `json:"rate"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// SetRateRequest represents the API request for replacing the rate
type SetRateRequest struct {
	Rate string `json:"rate" binding:"required"`
}

// SetRateResponse reports the replaced rate
type SetRateResponse struct {
	PreviousRate string `json:"previousRate"`
	Rate         string `json:"rate"`
}

// NewExchangeRateResponse maps the rate singleton
func NewExchangeRateResponse(r *entity.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		Rate:       entity.FormatTokens(r.Rate),
		LastUpdate: r.LastUpdate,
	}
}
