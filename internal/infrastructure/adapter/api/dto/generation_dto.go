package dto

import (
	"time"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// GenerationRequest represents the API request for a new audio generation
type GenerationRequest struct {
	Text string `json:"text" binding:"required"`
}

// GenerationResponse represents a generation record in API responses
type GenerationResponse struct {
	GenerationID   string    `json:"generationId"`
	UserID         string    `json:"userId"`
	Text           string    `json:"text"`
	TokensSpent    int64     `json:"tokensSpent"`
	Status         string    `json:"status"`
	ResultLocation *string   `json:"resultLocation,omitempty"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// GenerationListResponse wraps a page of generation records
type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
}

// NewGenerationResponse maps a generation record to its API form
func NewGenerationResponse(g *entity.GenerationRecord) GenerationResponse {
	return GenerationResponse{
		GenerationID:   g.ID.String(),
		UserID:         g.UserID.String(),
		Text:           g.Text,
		TokensSpent:    g.TokensSpent,
		Status:         string(g.Status),
		ResultLocation: g.ResultLocation,
		ErrorMessage:   g.ErrorMessage,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// NewGenerationListResponse maps a slice of generation records
func NewGenerationListResponse(records []*entity.GenerationRecord) GenerationListResponse {
	out := make([]GenerationResponse, 0, len(records))
	for _, g := range records {
		out = append(out, NewGenerationResponse(g))
	}
	return GenerationListResponse{Generations: out}
}
