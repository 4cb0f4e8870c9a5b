package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"postpulse/internal/config"
	"postpulse/internal/dataprocessing"
	apierrors "postpulse/internal/errors"
	"postpulse/internal/shared/testutil"
	"postpulse/pkg/contracts/domain"
)

type mockAnalyticsService struct {
	mock.Mock
}

func (m *mockAnalyticsService) LoadWorkbook(ctx context.Context, sessionID string, r io.Reader, sourceName string) (*domain.UploadResult, error) {
	args := m.Called(ctx, sessionID, r, sourceName)
	if res := args.Get(0); res != nil {
		return res.(*domain.UploadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Summary(ctx context.Context, sessionID string, criteria domain.FilterCriteria) (domain.Summary, error) {
	args := m.Called(ctx, sessionID, criteria)
	return args.Get(0).(domain.Summary), args.Error(1)
}

func (m *mockAnalyticsService) Posts(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.Post, error) {
	args := m.Called(ctx, sessionID, criteria)
	if res := args.Get(0); res != nil {
		return res.([]domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Trend(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, sessionID, criteria)
	if res := args.Get(0); res != nil {
		return res.([]domain.TrendPoint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Scatter(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.ScatterPoint, error) {
	args := m.Called(ctx, sessionID, criteria)
	if res := args.Get(0); res != nil {
		return res.([]domain.ScatterPoint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) TopPosts(ctx context.Context, sessionID string, criteria domain.FilterCriteria, metric domain.TopMetric, n int) ([]domain.RankedPost, error) {
	args := m.Called(ctx, sessionID, criteria, metric, n)
	if res := args.Get(0); res != nil {
		return res.([]domain.RankedPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Facets(ctx context.Context, sessionID string) (domain.Facets, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Facets), args.Error(1)
}

func (m *mockAnalyticsService) ExportCSV(ctx context.Context, sessionID string, criteria domain.FilterCriteria, w io.Writer) (int, error) {
	args := m.Called(ctx, sessionID, criteria, w)
	return args.Int(0), args.Error(1)
}

func (m *mockAnalyticsService) DeleteSession(ctx context.Context, sessionID string) {
	m.Called(ctx, sessionID)
}

// newAnalyticsFixture mounts the handler the way the app router does.
func newAnalyticsFixture(t *testing.T) (*mockAnalyticsService, http.Handler) {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	svc := new(mockAnalyticsService)
	handler := NewAnalyticsHandler(
		svc,
		config.UploadConfig{MaxSizeBytes: 1 << 20, FieldName: "file"},
		config.AnalyticsConfig{DefaultTopN: 10, MaxTopN: 100},
		logger,
		apierrors.NewErrorHandler(logger, false),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/analytics", handler.Routes())
	return svc, r
}

// multipartUpload builds a multipart body with a single file field.
func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyticsHandler_Upload(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	loadedAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	svc.On("LoadWorkbook", mock.Anything, "", mock.Anything, "export.xlsx").Return(&domain.UploadResult{
		SessionID:  "sess-123",
		DatasetID:  "ds-456",
		SourceName: "export.xlsx",
		Sheet:      "All posts",
		TotalRows:  42,
		LoadedAt:   loadedAt,
		Facets:     domain.Facets{TotalPosts: 42},
	}, nil)

	body, contentType := multipartUpload(t, "file", "export.xlsx", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "sess-123", rec.Header().Get(config.SessionIDHeader))

	resp := decodeJSON(t, rec)
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "sess-123", data["session_id"])
	assert.Equal(t, float64(42), data["total_rows"])
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_Upload_ReusesSession(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("LoadWorkbook", mock.Anything, "sess-123", mock.Anything, "again.xlsx").Return(&domain.UploadResult{
		SessionID: "sess-123",
		DatasetID: "ds-789",
	}, nil)

	body, contentType := multipartUpload(t, "file", "again.xlsx", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_Upload_NoFile(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	body, contentType := multipartUpload(t, "attachment", "export.xlsx", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

	problem := decodeJSON(t, rec)
	assert.Equal(t, "NO_FILE_UPLOADED", problem["error_code"])
	svc.AssertNotCalled(t, "LoadWorkbook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsHandler_Upload_TooLarge(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := new(mockAnalyticsService)
	handler := NewAnalyticsHandler(
		svc,
		config.UploadConfig{MaxSizeBytes: 64, FieldName: "file"},
		config.AnalyticsConfig{DefaultTopN: 10, MaxTopN: 100},
		logger,
		apierrors.NewErrorHandler(logger, false),
	)
	router := chi.NewRouter()
	router.Mount("/api/analytics", handler.Routes())

	body, contentType := multipartUpload(t, "file", "big.xlsx", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	svc.AssertNotCalled(t, "LoadWorkbook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsHandler_Upload_SheetNotFound(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("LoadWorkbook", mock.Anything, "", mock.Anything, "export.xlsx").Return(nil,
		&dataprocessing.SheetNotFoundError{Sheet: "All posts", Available: []string{"Engagement"}})

	body, contentType := multipartUpload(t, "file", "export.xlsx", []byte("workbook-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	problem := decodeJSON(t, rec)
	assert.Equal(t, "SHEET_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "All posts", problem["sheet"])
}

func TestAnalyticsHandler_MissingSessionHeader(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	paths := []string{"summary", "posts", "trend", "scatter", "top", "facets", "export"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analytics/"+path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeJSON(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
		})
	}
	svc.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Summary", mock.Anything, "sess-123", domain.FilterCriteria{}).Return(domain.Summary{
		TotalPosts:        3,
		TotalImpressions:  3400,
		AvgEngagementRate: 0.04,
		AvgCTR:            0.0175,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_posts"])
	assert.Equal(t, float64(3400), data["total_impressions"])
}

func TestAnalyticsHandler_Summary_SessionNotFound(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Summary", mock.Anything, "sess-gone", domain.FilterCriteria{}).
		Return(domain.Summary{}, apierrors.ErrSessionNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	req.Header.Set(config.SessionIDHeader, "sess-gone")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeJSON(t, rec)
	assert.Equal(t, "SESSION_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "/api/analytics/summary", problem["instance"])
}

func TestAnalyticsHandler_Posts_CriteriaParsing(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Posts", mock.Anything, "sess-123", mock.MatchedBy(func(c domain.FilterCriteria) bool {
		return c.PostType == domain.PostTypeOrganic &&
			c.From != nil && c.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			c.To != nil && c.To.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) &&
			c.Search == "launch"
	})).Return([]domain.Post{{Title: "Launch", Row: 1}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/analytics/posts?post_type=Organic&from=2025-01-01&to=2025-03-31&search=launch", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, float64(1), resp["count"])
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_InvalidQueryParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown post type", "post_type=Video"},
		{"malformed from date", "from=2025-13-01"},
		{"malformed to date", "to=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newAnalyticsFixture(t)

			req := httptest.NewRequest(http.MethodGet, "/api/analytics/posts?"+tt.query, nil)
			req.Header.Set(config.SessionIDHeader, "sess-123")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeJSON(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
			svc.AssertNotCalled(t, "Posts", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyticsHandler_TopPosts(t *testing.T) {
	t.Run("explicit metric and limit", func(t *testing.T) {
		svc, router := newAnalyticsFixture(t)
		svc.On("TopPosts", mock.Anything, "sess-123", domain.FilterCriteria{}, domain.TopMetricCTR, 5).
			Return([]domain.RankedPost{{Rank: 1, Row: 2, Value: 0.02}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/analytics/top?metric=ctr&limit=5", nil)
		req.Header.Set(config.SessionIDHeader, "sess-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, router := newAnalyticsFixture(t)
		svc.On("TopPosts", mock.Anything, "sess-123", domain.FilterCriteria{}, domain.TopMetricEngagement, 10).
			Return([]domain.RankedPost{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/analytics/top", nil)
		req.Header.Set(config.SessionIDHeader, "sess-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("invalid metric", func(t *testing.T) {
		svc, router := newAnalyticsFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/analytics/top?metric=views", nil)
		req.Header.Set(config.SessionIDHeader, "sess-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "TopPosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("limit out of range", func(t *testing.T) {
		svc, router := newAnalyticsFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/analytics/top?limit=0", nil)
		req.Header.Set(config.SessionIDHeader, "sess-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "TopPosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAnalyticsHandler_Export(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	csvBody := "\xef\xbb\xbftitle,impressions\nLaunch,500\n"
	svc.On("ExportCSV", mock.Anything, "sess-123", domain.FilterCriteria{PostType: domain.PostTypeOrganic}, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(3).(io.Writer)
			_, err := w.Write([]byte(csvBody))
			require.NoError(t, err)
		}).
		Return(1, nil)

	// Session travels as a query parameter: download anchors cannot set headers.
	req := httptest.NewRequest(http.MethodGet,
		"/api/analytics/export?session_id=sess-123&post_type=Organic", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "linkedin_analytics_")
	assert.Contains(t, disposition, ".csv")
	assert.Equal(t, csvBody, rec.Body.String())
}

func TestAnalyticsHandler_Export_SessionNotFound(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("ExportCSV", mock.Anything, "sess-gone", domain.FilterCriteria{}, mock.Anything).
		Return(0, apierrors.ErrSessionNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/export", nil)
	req.Header.Set(config.SessionIDHeader, "sess-gone")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	assert.Empty(t, rec.Header().Get("Content-Disposition"), "failed exports must not look like downloads")
}

func TestAnalyticsHandler_Facets(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Facets", mock.Anything, "sess-123").Return(domain.Facets{
		TotalPosts: 3,
		PostTypes:  []domain.PostType{domain.PostTypeOrganic, domain.PostTypeSponsored},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/facets", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_posts"])
	assert.Len(t, data["post_types"], 2)
}

func TestAnalyticsHandler_DeleteSession(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("DeleteSession", mock.Anything, "sess-123").Return()

	req := httptest.NewRequest(http.MethodDelete, "/api/analytics/session", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, "success", resp["status"])
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_Trend(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Trend", mock.Anything, "sess-123", domain.FilterCriteria{}).Return([]domain.TrendPoint{
		{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Posts: 2, TotalImpressions: 900},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/trend", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, float64(1), resp["count"])
}

func TestAnalyticsHandler_Scatter(t *testing.T) {
	svc, router := newAnalyticsFixture(t)

	svc.On("Scatter", mock.Anything, "sess-123", domain.FilterCriteria{}).Return([]domain.ScatterPoint{
		{Impressions: 500, EngagementRate: 0.05, DisplayTitle: "Launch day recap."},
		{Impressions: 1200, EngagementRate: 0.03, DisplayTitle: "Hiring"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/scatter", nil)
	req.Header.Set(config.SessionIDHeader, "sess-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON(t, rec)
	assert.Equal(t, float64(2), resp["count"])

	data := resp["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, float64(500), first["impressions"])
}

func TestSessionID(t *testing.T) {
	t.Run("header wins over query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary?session_id=query-id", nil)
		req.Header.Set(config.SessionIDHeader, "header-id")
		assert.Equal(t, "header-id", sessionID(req))
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/export?session_id=query-id", nil)
		assert.Equal(t, "query-id", sessionID(req))
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
		assert.Equal(t, "", sessionID(req))
	})
}

func TestClientLogHandler(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	handler := NewClientLogHandler(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("logs entry at requested level", func(t *testing.T) {
		rec.Reset()
		body := `{"level":"error","message":"chart render failed","page":"/","data":{"chart":"trend"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/client-logs", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Handle(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.True(t, rec.HasMessage("chart render failed"))
		require.Len(t, rec.ByLevel(slog.LevelError), 1)
		assert.True(t, rec.HasAttr("page", "/"))
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		rec.Reset()
		req := httptest.NewRequest(http.MethodPost, "/api/client-logs", strings.NewReader("{nope"))
		w := httptest.NewRecorder()

		handler.Handle(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects empty message", func(t *testing.T) {
		rec.Reset()
		req := httptest.NewRequest(http.MethodPost, "/api/client-logs", strings.NewReader(`{"level":"info"}`))
		w := httptest.NewRecorder()

		handler.Handle(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		rec.Reset()
		body := `{"level":"catastrophic","message":"odd level"}`
		req := httptest.NewRequest(http.MethodPost, "/api/client-logs", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Handle(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, rec.ByLevel(slog.LevelInfo), 1)
	})
}
