package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"postpulse/internal/config"
	apierrors "postpulse/internal/errors"
	"postpulse/internal/exporter"
	"postpulse/internal/infrastructure"
	mw "postpulse/internal/middleware"
	"postpulse/pkg/contracts/domain"
)

// postTypeValues are the accepted post_type filter values.
var postTypeValues = []string{
	string(domain.PostTypeOrganic),
	string(domain.PostTypeSponsored),
	string(domain.PostTypeTotal),
	string(domain.PostTypeUnknown),
}

// topMetricValues are the accepted metric values for top-post rankings.
var topMetricValues = []string{
	string(domain.TopMetricEngagement),
	string(domain.TopMetricCTR),
}

// AnalyticsHandler handles dataset HTTP requests with RFC 7807 compliance
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	upload       config.UploadConfig
	analytics    config.AnalyticsConfig
	params       *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler with RFC 7807 error handling
func NewAnalyticsHandler(service AnalyticsServiceInterface, upload config.UploadConfig, analytics config.AnalyticsConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		upload:       upload,
		analytics:    analytics,
		params:       mw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes with proper Chi patterns
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Operations that ingest, expose or drop data carry an audit trail
	audit := mw.AuditLog(h.logger)

	r.With(audit).Post("/upload", h.Upload)

	// Query routes require a session carrying a loaded dataset. Each query is
	// wrapped in its own span so slow aggregations show up per query type.
	r.Group(func(r chi.Router) {
		r.Use(mw.Timeout(30*time.Second, h.logger))
		r.Use(h.SessionCtx)
		r.Get("/summary", mw.AnalyticsTraceHandler("summary", h.Summary))
		r.Get("/posts", mw.AnalyticsTraceHandler("posts", h.Posts))
		r.Get("/trend", mw.AnalyticsTraceHandler("trend", h.Trend))
		r.Get("/scatter", mw.AnalyticsTraceHandler("scatter", h.Scatter))
		r.Get("/top", mw.AnalyticsTraceHandler("top", h.TopPosts))
		r.Get("/facets", mw.AnalyticsTraceHandler("facets", h.Facets))
		r.With(audit).Get("/export", h.Export)
		r.With(audit).Delete("/session", h.DeleteSession)
	})

	return r
}

// SessionCtx middleware validates that a session ID accompanies the request
func (h *AnalyticsHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID(r) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				config.SessionIDHeader,
				"Session ID is required; upload a workbook to obtain one"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionID extracts the session ID from the request. The header is
// authoritative; the session_id query parameter exists for plain links such
// as the dashboard's CSV download anchor, which cannot set headers.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(config.SessionIDHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("session_id")
}

// Upload handles POST /api/analytics/upload with a multipart workbook
func (h *AnalyticsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxSizeBytes)

	file, header, err := r.FormFile(h.upload.FieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
			return
		}
		// Oversized bodies surface here as http.MaxBytesError
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "workbook upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	start := time.Now()
	result, err := h.service.LoadWorkbook(r.Context(), sessionID(r), file, header.Filename)
	if err != nil {
		infrastructure.RecordUploadMetrics(r.Context(), mw.GetBusinessMetricsFromContext(r.Context()),
			header.Filename, header.Size, 0, 0, time.Since(start), err)
		h.logger.ErrorContext(r.Context(), "workbook upload rejected",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	infrastructure.RecordUploadMetrics(r.Context(), mw.GetBusinessMetricsFromContext(r.Context()),
		header.Filename, header.Size, result.TotalRows, result.SkippedRows, time.Since(start), nil)

	w.Header().Set(config.SessionIDHeader, result.SessionID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), sessionID(r), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// Posts handles GET /api/analytics/posts
func (h *AnalyticsHandler) Posts(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	posts, err := h.service.Posts(r.Context(), sessionID(r), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   posts,
		"count":  len(posts),
	})
}

// Trend handles GET /api/analytics/trend
func (h *AnalyticsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	points, err := h.service.Trend(r.Context(), sessionID(r), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// Scatter handles GET /api/analytics/scatter
func (h *AnalyticsHandler) Scatter(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	points, err := h.service.Scatter(r.Context(), sessionID(r), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// TopPosts handles GET /api/analytics/top
func (h *AnalyticsHandler) TopPosts(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	rawMetric, ok := h.params.ValidateEnum(w, r, "metric", topMetricValues, "")
	if !ok {
		return
	}
	metric, _ := domain.ParseTopMetric(rawMetric)

	limit, ok := h.params.ValidateInt(w, r, "limit", 1, h.analytics.MaxTopN, h.analytics.DefaultTopN)
	if !ok {
		return
	}

	ranked, err := h.service.TopPosts(r.Context(), sessionID(r), criteria, metric, limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ranked,
		"count":  len(ranked),
	})
}

// Facets handles GET /api/analytics/facets
func (h *AnalyticsHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context(), sessionID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   facets,
	})
}

// Export handles GET /api/analytics/export with a CSV download.
// The CSV is buffered before any header is written so that a failed export
// still renders a clean problem response instead of a half-sent attachment.
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.criteria(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	rows, err := h.service.ExportCSV(r.Context(), sessionID(r), criteria, &buf)
	infrastructure.RecordExportMetrics(r.Context(), mw.GetBusinessMetricsFromContext(r.Context()), rows, err)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := exporter.Filename("linkedin_analytics", time.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("error", err.Error()),
			slog.Int("rows", rows))
	}
}

// DeleteSession handles DELETE /api/analytics/session
func (h *AnalyticsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.service.DeleteSession(r.Context(), sessionID(r))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
	})
}

// criteria parses the shared filter query parameters. Validation failures
// render a problem response and report ok = false.
func (h *AnalyticsHandler) criteria(w http.ResponseWriter, r *http.Request) (domain.FilterCriteria, bool) {
	var c domain.FilterCriteria

	postType, ok := h.params.ValidateEnum(w, r, "post_type", postTypeValues, "")
	if !ok {
		return c, false
	}
	c.PostType = domain.PostType(postType)

	from, ok := h.params.ValidateDate(w, r, "from")
	if !ok {
		return c, false
	}
	if !from.IsZero() {
		c.From = &from
	}

	to, ok := h.params.ValidateDate(w, r, "to")
	if !ok {
		return c, false
	}
	if !to.IsZero() {
		c.To = &to
	}

	c.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	return c, true
}
