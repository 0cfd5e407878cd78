package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		status int
		want   map[string]any
	}{
		{
			name: "all up",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			status: http.StatusOK,
			want:   map[string]any{"database": "ok", "redis": "ok"},
		},
		{
			name: "database down",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return errors.New("refused") },
			},
			status: http.StatusServiceUnavailable,
			want:   map[string]any{"database": "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks)
			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, decodeBody(t, rec)["checks"])
		})
	}
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
