package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"postpulse/internal/infrastructure"
	"postpulse/internal/shared/testutil"
)

// testOTel bundles recording providers with a manual reader so tests can
// assert on collected metrics without a running exporter.
type testOTel struct {
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.BusinessMetrics
	reader    *sdkmetric.ManualReader
	logs      *testutil.LogRecorder
}

func newTestOTel(t *testing.T) testOTel {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	logger, logs := testutil.NewTestLogger(t)
	providers := &infrastructure.OTelProviders{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracer:         tp.Tracer("middleware-test"),
		Meter:          mp.Meter("middleware-test"),
		Logger:         logger,
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	return testOTel{providers: providers, metrics: metrics, reader: reader, logs: logs}
}

func (o testOTel) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, o.reader.Collect(context.Background(), &rm))
	return rm
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestOTelMiddlewareHandler(t *testing.T) {
	otel := newTestOTel(t)
	mw := NewOTelMiddleware(otel.providers, otel.metrics)

	var gotTraceID string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/analytics/summary", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	// A sampled span was started and its ID made available for log
	// correlation before the handler ran.
	assert.Len(t, gotTraceID, 32)
	assert.NotEqual(t, strings.Repeat("0", 32), gotTraceID)

	assert.True(t, otel.logs.HasMessage("HTTP request completed"))
	assert.True(t, otel.logs.HasAttr("status_code", int64(http.StatusCreated)))
	assert.True(t, otel.logs.HasAttr("trace_id", gotTraceID))

	rm := otel.collect(t)
	assert.Equal(t, int64(1), counterValue(t, rm, "http_requests_total"))
}

func TestBusinessMetricsMiddleware(t *testing.T) {
	otel := newTestOTel(t)

	var got *infrastructure.BusinessMetrics
	handler := BusinessMetricsMiddleware(otel.metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetBusinessMetricsFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Same(t, otel.metrics, got)
	assert.Nil(t, GetBusinessMetricsFromContext(context.Background()))
}

func TestAnalyticsTraceHandler(t *testing.T) {
	t.Run("records query metrics", func(t *testing.T) {
		otel := newTestOTel(t)

		var handlerRan bool
		wrapped := AnalyticsTraceHandler("summary", func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/analytics/summary", nil)
		BusinessMetricsMiddleware(otel.metrics)(wrapped).ServeHTTP(w, r)

		assert.True(t, handlerRan)
		assert.Equal(t, http.StatusOK, w.Code)

		rm := otel.collect(t)
		assert.Equal(t, int64(1), counterValue(t, rm, "analytics_queries_total"))
	})

	t.Run("runs without metrics in context", func(t *testing.T) {
		var handlerRan bool
		wrapped := AnalyticsTraceHandler("posts", func(w http.ResponseWriter, r *http.Request) {
			handlerRan = true
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/api/analytics/posts", nil))

		assert.True(t, handlerRan)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRecordSystemError(t *testing.T) {
	// Without metrics in context the call is a no-op.
	RecordSystemError(context.Background(), "panic", "http")

	otel := newTestOTel(t)
	handler := BusinessMetricsMiddleware(otel.metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RecordSystemError(r.Context(), "panic", "http")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	rm := otel.collect(t)
	assert.Equal(t, int64(1), counterValue(t, rm, "system_errors_total"))
}

func TestWebSocketTraceMiddleware(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)

	var gotTraceID string
	handler := WebSocketTraceMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusSwitchingProtocols)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://localhost:8080")

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSwitchingProtocols, w.Code)
	assert.NotEmpty(t, gotTraceID)
	assert.True(t, logs.HasMessage("WebSocket upgrade attempt"))
	assert.True(t, logs.HasAttr("origin", "http://localhost:8080"))
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{name: "x-forwarded-for wins", forwarded: "203.0.113.7", realIP: "198.51.100.2", want: "203.0.113.7"},
		{name: "x-real-ip fallback", realIP: "198.51.100.2", want: "198.51.100.2"},
		{name: "remote addr fallback", want: "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, GetRealIP(r))
		})
	}
}

func TestGetRoutePattern(t *testing.T) {
	var pattern string
	router := chi.NewRouter()
	router.Get("/api/analytics/{metric}", func(w http.ResponseWriter, r *http.Request) {
		pattern = getRoutePattern(r)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/analytics/impressions", nil))
	assert.Equal(t, "/api/analytics/{metric}", pattern)

	// Outside a chi route the raw path is the best available.
	assert.Equal(t, "/metrics", getRoutePattern(httptest.NewRequest("GET", "/metrics", nil)))
}
