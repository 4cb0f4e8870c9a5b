package errors

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/internal/shared/testutil"
)

func TestNewErrorMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)

	em := NewErrorMiddleware(errorHandler, logger)

	assert.NotNil(t, em)
	assert.Equal(t, errorHandler, em.handler)
	assert.NotNil(t, em.logger)
}

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		requestBody   string
		requestPath   string
		requestMethod string
		wantStatus    int
		shouldPanic   bool
		wantLogLevel  slog.Level
	}{
		{
			name: "successful request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			},
			requestPath:   "/api/analytics/summary",
			requestMethod: "GET",
			wantStatus:    http.StatusOK,
			wantLogLevel:  slog.LevelInfo,
		},
		{
			name: "client error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad request"))
			},
			requestPath:   "/api/analytics/posts",
			requestMethod: "GET",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "server error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("internal error"))
			},
			requestPath:   "/api/analytics/export",
			requestMethod: "GET",
			wantStatus:    http.StatusInternalServerError,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "request with body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("validation error"))
			},
			requestBody:   `{"search": "launch", "password": "hunter2"}`,
			requestPath:   "/api/analytics/posts",
			requestMethod: "POST",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "request that panics",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			requestPath:   "/api/analytics/trend",
			requestMethod: "GET",
			wantStatus:    http.StatusInternalServerError,
			shouldPanic:   true,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "request with query parameters",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad query"))
			},
			requestPath:   "/api/analytics/top?metric=unknown&limit=10",
			requestMethod: "GET",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, rec := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, false)
			em := NewErrorMiddleware(errorHandler, logger)

			var body *strings.Reader
			if tt.requestBody != "" {
				body = strings.NewReader(tt.requestBody)
			} else {
				body = strings.NewReader("")
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.requestMethod, tt.requestPath, body)

			em.Handler(tt.handler).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			// Every request produces one "http request" entry at the level
			// implied by its status code
			var found bool
			for _, e := range rec.ByLevel(tt.wantLogLevel) {
				if e.Message == "http request" {
					found = true
					assert.Equal(t, tt.requestMethod, e.Attrs["method"])
					assert.Equal(t, int64(tt.wantStatus), e.Attrs["status"])
				}
			}
			assert.True(t, found, "expected http request log at level %s", tt.wantLogLevel)

			if tt.shouldPanic {
				testutil.AssertLogged(t, rec, slog.LevelError, "panic recovered")
			}
		})
	}
}

func TestErrorMiddleware_RequestBodyCapture(t *testing.T) {
	t.Run("body still readable by handler", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

		var got string
		handler := func(w http.ResponseWriter, r *http.Request) {
			b := make([]byte, 64)
			n, _ := r.Body.Read(b)
			got = string(b[:n])
			w.WriteHeader(http.StatusOK)
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/analytics/upload", strings.NewReader("payload"))

		em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

		assert.Equal(t, "payload", got, "middleware must replay the captured body")
	})

	t.Run("body logged for error responses", func(t *testing.T) {
		logger, rec := testutil.NewTestLogger(t)
		em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/analytics/upload", strings.NewReader(`{"name":"x"}`))

		em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

		var logged string
		for _, e := range rec.Entries() {
			if v, ok := e.Attrs["request_body"].(string); ok {
				logged = v
			}
		}
		assert.Contains(t, logged, `"name"`)
	})

	t.Run("sensitive fields redacted in logged body", func(t *testing.T) {
		logger, rec := testutil.NewTestLogger(t)
		em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/test", strings.NewReader(`{"user":"a","token":"sekrit"}`))

		em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

		var logged string
		for _, e := range rec.Entries() {
			if v, ok := e.Attrs["request_body"].(string); ok {
				logged = v
			}
		}
		require.NotEmpty(t, logged)
		assert.Contains(t, logged, "[REDACTED]")
		assert.NotContains(t, logged, "sekrit")
	})

	t.Run("body not logged for successful responses", func(t *testing.T) {
		logger, rec := testutil.NewTestLogger(t)
		em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/test", strings.NewReader(`{"a":1}`))

		em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

		for _, e := range rec.Entries() {
			_, ok := e.Attrs["request_body"]
			assert.False(t, ok, "success responses must not log the body")
		}
	})
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantRedact  []string
		wantPresent []string
	}{
		{
			name:        "redacts password field",
			body:        `{"username": "alice", "password": "secret123"}`,
			wantRedact:  []string{"secret123"},
			wantPresent: []string{"alice", "[REDACTED]"},
		},
		{
			name:        "redacts token and api_key",
			body:        `{"token": "tok-1", "api_key": "key-1", "query": "launch"}`,
			wantRedact:  []string{"tok-1", "key-1"},
			wantPresent: []string{"launch", "[REDACTED]"},
		},
		{
			name:        "non-JSON body passes through",
			body:        "plain text payload",
			wantRedact:  nil,
			wantPresent: []string{"plain text payload"},
		},
		{
			name:        "nested sensitive fields stay untouched",
			body:        `{"outer": {"password": "deep"}}`,
			wantRedact:  nil,
			wantPresent: []string{"deep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRequestBody(tt.body)

			for _, s := range tt.wantRedact {
				assert.NotContains(t, got, s)
			}
			for _, s := range tt.wantPresent {
				assert.Contains(t, got, s)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantStatus  int
		shouldPanic bool
	}{
		{
			name: "passes through normal requests",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "recovers from panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			},
			wantStatus:  http.StatusInternalServerError,
			shouldPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, rec := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, false)

			mw := RecoveryMiddleware(errorHandler)(tt.handler)

			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/test", nil)

			require.NotPanics(t, func() {
				mw.ServeHTTP(w, r)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.shouldPanic {
				testutil.AssertLogged(t, rec, slog.LevelError, "panic recovered")
			}
		})
	}
}

func TestErrorMiddleware_LargeRequestBodyHandling(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	// Over the 1MB capture limit: the body must not be buffered for logging
	large := strings.Repeat("x", 2<<20)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/test", strings.NewReader(large))

	em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

	for _, e := range rec.Entries() {
		_, ok := e.Attrs["request_body"]
		assert.False(t, ok, "oversized bodies must not be captured")
	}
}

func TestErrorMiddleware_BodyTruncation(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	// Non-JSON body longer than the 500 byte log limit
	body := strings.Repeat("a", 600)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

	var logged string
	for _, e := range rec.Entries() {
		if v, ok := e.Attrs["request_body"].(string); ok {
			logged = v
		}
	}
	require.NotEmpty(t, logged)
	assert.True(t, strings.HasSuffix(logged, "..."))
	assert.LessOrEqual(t, len(logged), 503)
}

func TestErrorMiddleware_NilRequestBody(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test", nil)

	require.NotPanics(t, func() {
		em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorMiddleware_LoggingAttributes(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/analytics/facets?post_type=Video", nil)
	r.Header.Set("User-Agent", "analytics-test/1.0")

	em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

	entries := rec.ByLevel(slog.LevelInfo)
	require.NotEmpty(t, entries)

	e := entries[len(entries)-1]
	assert.Equal(t, "http request", e.Message)
	assert.Equal(t, "GET", e.Attrs["method"])
	assert.Equal(t, "/api/analytics/facets", e.Attrs["path"])
	assert.Equal(t, int64(http.StatusOK), e.Attrs["status"])
	assert.Equal(t, int64(5), e.Attrs["bytes"])
	assert.Equal(t, "analytics-test/1.0", e.Attrs["user_agent"])
	assert.Equal(t, "post_type=Video", e.Attrs["query"])
	assert.Contains(t, e.Attrs, "duration")
	assert.Contains(t, e.Attrs, "remote_addr")
}

func TestErrorMiddleware_ConcurrentRequests(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	em := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	wrapped := em.Handler(http.HandlerFunc(handler))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", fmt.Sprintf("/test/%d", n), nil)
			wrapped.ServeHTTP(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, rec.Len())
}

func TestErrorMiddleware_Integration(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	em := NewErrorMiddleware(errorHandler, logger)

	// Chain the logging middleware around a handler that defers to the
	// centralized error handler, the way route registration does
	handler := func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleError(w, r, ErrDatasetNotFound)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/analytics/summary", nil)

	em.Handler(http.HandlerFunc(handler)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, rec.HasMessage("request failed"))
	assert.True(t, rec.HasMessage("http request"))
}
