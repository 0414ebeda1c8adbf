package dto

import (
	"time"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// RegisterRequest represents the API request for creating an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewRegisterResponse maps a new account to its API form
func NewRegisterResponse(u *entity.User, b *entity.Balance) RegisterResponse {
	return RegisterResponse{
		UserID:    u.ID.String(),
		Email:     u.Email,
		Balance:   entity.FormatTokens(b.Amount),
		CreatedAt: u.CreatedAt,
	}
}
