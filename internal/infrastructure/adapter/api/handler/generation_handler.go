package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
)

const contentTypeWAV = "audio/wav"

// GenerationHandler handles audio generation HTTP requests
type GenerationHandler struct {
	generations usecase.GenerationUseCase
	logger      coreport.Logger
}

// NewGenerationHandler creates a new generation handler instance
func NewGenerationHandler(generations usecase.GenerationUseCase, logger coreport.Logger) *GenerationHandler {
	return &GenerationHandler{
		generations: generations,
		logger:      logger,
	}
}

// Request handles POST /user/:userId/generations.
// The record is returned with 202 even when dispatch failed; its status says so.
func (h *GenerationHandler) Request(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}

	var req dto.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errs.ErrInvalidRequest, "Invalid request format: "+err.Error())
		return
	}

	record, err := h.generations.RequestGeneration(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewGenerationResponse(record))
}

// Get handles GET /user/:userId/generations/:generationId
func (h *GenerationHandler) Get(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	generationID, ok := pathUUID(c, "generationId", errs.ErrInvalidGenerationID)
	if !ok {
		return
	}

	record, err := h.generations.GetStatus(c.Request.Context(), userID, generationID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGenerationResponse(record))
}

// List handles GET /user/:userId/generations
func (h *GenerationHandler) List(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	records, err := h.generations.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGenerationListResponse(records))
}

// Audio handles GET /user/:userId/generations/:generationId/audio
func (h *GenerationHandler) Audio(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", errs.ErrInvalidUserID)
	if !ok {
		return
	}
	generationID, ok := pathUUID(c, "generationId", errs.ErrInvalidGenerationID)
	if !ok {
		return
	}

	audio, err := h.generations.GetAudio(c.Request.Context(), userID, generationID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+generationID.String()+`.wav"`)
	c.Data(http.StatusOK, contentTypeWAV, audio)
}
