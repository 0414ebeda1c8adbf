package dto

import (
	"time"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
)

// TransactionRequest represents the API request for creating a transaction
type TransactionRequest struct {
	Amount string `json:"amount" binding:"required"`
	Type   string `json:"type" binding:"required"`
	// Settle applies the transaction to the balance in the same request
	Settle bool `json:"settle"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	TransactionID string     `json:"transactionId"`
	UserID        string     `json:"userId"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Amount        string     `json:"amount"`
	Rate          string     `json:"rate,omitempty"`
	Tokens        string     `json:"tokens,omitempty"`
	ResultBalance string     `json:"resultBalance,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
}

// TransactionListResponse wraps a page of transactions
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// NewTransactionResponse maps a transaction to its API form
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: t.ID.String(),
		UserID:        t.UserID.String(),
		Type:          string(t.Type),
		Status:        string(t.Status),
		Amount:        entity.FormatTokens(t.Amount),
		ErrorMessage:  t.ErrorMessage,
		CreatedAt:     t.CreatedAt,
		ProcessedAt:   t.ProcessedAt,
	}
	if t.Status == entity.TransactionDone {
		if t.Type == entity.TypeCredit {
			resp.Rate = entity.FormatTokens(t.Rate)
		}
		resp.Tokens = entity.FormatTokens(t.Tokens)
		resp.ResultBalance = entity.FormatTokens(t.ResultBalance)
	}
	return resp
}

// NewTransactionListResponse maps a slice of transactions
func NewTransactionListResponse(txns []*entity.Transaction) TransactionListResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, NewTransactionResponse(t))
	}
	return TransactionListResponse{Transactions: out}
}
