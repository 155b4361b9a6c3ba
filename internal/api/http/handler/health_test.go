package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fioprotocol/fio-provisioner/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		want   dto.HealthResponse
	}{
		{"no database", nil, http.StatusOK, dto.HealthResponse{Status: "ok"}},
		{"database up", pingFunc(func(context.Context) error { return nil }), http.StatusOK, dto.HealthResponse{Status: "ok", Database: "ok"}},
		{"database down", pingFunc(func(context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "unreachable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db).Check)

			w := doRequest(t, r, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, decode[dto.HealthResponse](t, w))
		})
	}
}
