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

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	transactions usecase.TransactionUseCase
	logger       coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(transactions usecase.TransactionUseCase, logger coreport.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// Create handles POST /user/:userId/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errs.ErrInvalidRequest, "Invalid request format: "+err.Error())
		return
	}

	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	var txn *entity.Transaction
	if req.Settle {
		txn, err = h.transactions.CreateAndSettle(ctx, userID, amount, req.Type)
	} else {
		txn, err = h.transactions.Create(ctx, userID, amount, req.Type)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTransactionResponse(txn))
}

// Settle handles POST /user/:userId/transactions/:transactionId/settle
func (h *TransactionHandler) Settle(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "transactionId", errs.ErrInvalidTransactionID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	// ownership check; Settle itself is keyed by transaction id only
	if _, err := h.transactions.Get(ctx, userID, transactionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	txn, err := h.transactions.Settle(ctx, transactionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionResponse(txn))
}

// Get handles GET /user/:userId/transactions/:transactionId
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	transactionID, ok := pathUUID(c, "transactionId", errs.ErrInvalidTransactionID)
	if !ok {
		return
	}

	txn, err := h.transactions.Get(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionResponse(txn))
}

// List handles GET /user/:userId/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	txns, err := h.transactions.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTransactionListResponse(txns))
}
