package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/api/dto"
)

const defaultListLimit = 50

// httpStatus maps a domain error to an HTTP status code
func httpStatus(err error) int {
	switch {
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicateSingleton),
		errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrArtifactNotReady),
		errors.Is(err, errs.ErrInvalidStatusTransition),
		errors.Is(err, errs.ErrUserLocked):
		return http.StatusConflict
	case errors.Is(err, errs.ErrPublishUnavailable),
		errors.Is(err, errs.ErrDatabaseConnection),
		errors.Is(err, errs.ErrConcurrentUpdate):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Server-side failures are logged and
// their detail is not exposed.
func respondError(c *gin.Context, logger coreport.Logger, err error) {
	status := httpStatus(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		message = http.StatusText(status)
	}

	_ = c.Error(err)
	c.JSON(status, dto.ErrorResponse{
		Code:    errs.ErrorCode(err),
		Message: message,
	})
}

func badRequest(c *gin.Context, sentinel error, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.ErrorCode(sentinel),
		Message: message,
	})
}

// pathUUID parses a uuid path parameter and answers 400 when it is malformed
func pathUUID(c *gin.Context, name string, sentinel error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, sentinel, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// queryLimit reads the optional ?limit= parameter
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		badRequest(c, errs.ErrInvalidRequest, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}
