package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
)

// UserHandler handles account-related HTTP requests
type UserHandler struct {
	accounts usecase.AccountUseCase
	logger   coreport.Logger
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(accounts usecase.AccountUseCase, logger coreport.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Register handles POST /user
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errs.ErrInvalidRequest, "Invalid request format: "+err.Error())
		return
	}

	user, balance, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewRegisterResponse(user, balance))
}

// GetBalance handles GET /user/:userId/balance
func (h *UserHandler) GetBalance(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}

	balance, err := h.accounts.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBalanceResponse(balance))
}
