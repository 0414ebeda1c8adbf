package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"up", nil, http.StatusOK, `{"status":"ok","database":"up"}`},
		{"down", errors.New("ping failed"), http.StatusServiceUnavailable, `{"status":"unavailable","database":"down"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(healthFunc(func(context.Context) error { return tt.err }), silent)
			router := gin.New()
			router.GET("/health", h.Check)

			w := serve(router, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
