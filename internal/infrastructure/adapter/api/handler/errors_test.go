package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errs.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("%w: x", errs.ErrEmptyText), http.StatusBadRequest},
		{errs.ErrInvalidTransactionType, http.StatusBadRequest},
		{errs.NewInsufficientBalanceError("u", "t", "10", "5"), http.StatusPaymentRequired},
		{errs.ErrUserNotFound, http.StatusNotFound},
		{errs.ErrGenerationNotFound, http.StatusNotFound},
		{errs.ErrEmailTaken, http.StatusConflict},
		{errs.ErrArtifactNotReady, http.StatusConflict},
		{errs.ErrUserLocked, http.StatusConflict},
		{errs.ErrPublishUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("commit: %w", errs.ErrConcurrentUpdate), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, httpStatus(tt.err))
		})
	}
}
