package dto

import (
	"time"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// BalanceResponse represents the API response for a user's balance
type BalanceResponse struct {
	UserID    string    `json:"userId"`
	Balance   string    `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBalanceResponse maps a balance to its API form
func NewBalanceResponse(b *entity.Balance) BalanceResponse {
	return BalanceResponse{
		UserID:    b.UserID.String(),
		Balance:   entity.FormatTokens(b.Amount),
		UpdatedAt: b.UpdatedAt,
	}
}
