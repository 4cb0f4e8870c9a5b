package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/internal/infrastructure"
)

func TestProblemFromStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantTitle string
		wantType  string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTitle: "Too Many Requests", wantType: "/errors/rate-limit-exceeded"},
		{name: "timeout", status: http.StatusGatewayTimeout, wantTitle: "Request Timeout", wantType: "/errors/request-timeout"},
		{name: "panic", status: http.StatusInternalServerError, wantTitle: "Internal Server Error", wantType: "/errors/internal-server-error"},
		{name: "unmapped status", status: http.StatusTeapot, wantTitle: "I'm a teapot", wantType: "/errors/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProblemFromStatus(tt.status, "detail", "trace-1")

			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "detail", p.Detail)
			assert.Equal(t, "trace-1", p.Trace)
		})
	}
}

func TestWriteProblem(t *testing.T) {
	t.Run("renders problem+json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)

		WriteProblem(w, r, ProblemFromStatus(http.StatusTooManyRequests, "slow down", "trace-2"))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

		var p Problem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, "slow down", p.Detail)
		assert.Equal(t, "trace-2", p.Trace)
	})

	t.Run("resolves trace id from context", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-from-ctx"))

		WriteProblem(w, r, ProblemFromStatus(http.StatusInternalServerError, "boom", ""))

		var p Problem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, "trace-from-ctx", p.Trace)
	})
}
