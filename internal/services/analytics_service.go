package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"postpulse/internal/dataprocessing"
	apierrors "postpulse/internal/errors"
	"postpulse/internal/exporter"
	"postpulse/internal/session"
	"postpulse/pkg/contracts/domain"
	"postpulse/pkg/contracts/events"
)

// DatasetEvents pushes dataset lifecycle notifications to connected
// dashboard clients. *websocket.Hub satisfies it; tests use a recorder.
type DatasetEvents interface {
	BroadcastDatasetLoaded(data events.DatasetLoadedData)
	BroadcastDatasetExpired(data events.DatasetExpiredData)
}

// UploadArchive persists parsed workbooks for reprocessing after the session
// expires. *files.Archive satisfies it; nil disables archiving.
type UploadArchive interface {
	Save(sessionID, sourceName string, data []byte) (string, error)
}

// AnalyticsService runs the upload -> parse -> filter -> aggregate pipeline
// over session-scoped datasets. All read operations work on an immutable
// snapshot taken from the store, so concurrent requests against the same
// session never observe a half-replaced dataset.
type AnalyticsService struct {
	store      *session.Store
	parser     *dataprocessing.Parser
	summarizer *dataprocessing.Summarizer
	exporter   *exporter.PostExporter
	events     DatasetEvents
	archive    UploadArchive
	logger     *slog.Logger
}

// NewAnalyticsService creates the analytics service with injected
// dependencies. datasetEvents may be nil when no WebSocket hub is running,
// and archive may be nil to skip keeping upload copies.
func NewAnalyticsService(
	store *session.Store,
	parser *dataprocessing.Parser,
	summarizer *dataprocessing.Summarizer,
	postExporter *exporter.PostExporter,
	datasetEvents DatasetEvents,
	archive UploadArchive,
	logger *slog.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnalyticsService{
		store:      store,
		parser:     parser,
		summarizer: summarizer,
		exporter:   postExporter,
		events:     datasetEvents,
		archive:    archive,
		logger:     logger.With(slog.String("component", "analytics_service")),
	}
}

// LoadWorkbook parses an uploaded workbook and stores the resulting dataset
// under the session. An empty sessionID mints a fresh one so first-time
// uploads do not need to negotiate a session beforehand. A repeat upload for
// the same session replaces the previous dataset atomically.
func (s *AnalyticsService) LoadWorkbook(ctx context.Context, sessionID string, r io.Reader, sourceName string) (*domain.UploadResult, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil workbook reader", ErrNoSource)
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	// The parser buffers the workbook anyway, so teeing costs one copy and
	// gives the archive the exact uploaded bytes.
	var raw bytes.Buffer
	start := time.Now()
	dataset, err := s.parser.Parse(ctx, io.TeeReader(r, &raw), sourceName)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook load failed",
			slog.String("session_id", sessionID),
			slog.String("source", sourceName),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("load workbook: %w", err)
	}

	s.store.Put(sessionID, dataset)

	// Archiving is best effort; a full disk must not fail the upload.
	if s.archive != nil {
		if name, err := s.archive.Save(sessionID, dataset.SourceName, raw.Bytes()); err != nil {
			s.logger.WarnContext(ctx, "workbook archive failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
		} else {
			s.logger.DebugContext(ctx, "workbook archived", slog.String("name", name))
		}
	}

	result := &domain.UploadResult{
		SessionID:   sessionID,
		DatasetID:   dataset.ID,
		SourceName:  dataset.SourceName,
		Sheet:       dataset.Sheet,
		TotalRows:   len(dataset.Posts),
		SkippedRows: dataset.SkippedRows,
		LoadedAt:    dataset.LoadedAt,
		Facets:      dataset.Facets(),
	}

	if s.events != nil {
		s.events.BroadcastDatasetLoaded(events.DatasetLoadedData{
			SessionID:  sessionID,
			DatasetID:  dataset.ID,
			SourceName: dataset.SourceName,
			Sheet:      dataset.Sheet,
			TotalRows:  len(dataset.Posts),
			LoadedAt:   dataset.LoadedAt,
		})
	}

	s.logger.InfoContext(ctx, "workbook loaded",
		slog.String("session_id", sessionID),
		slog.String("dataset_id", dataset.ID),
		slog.String("source", dataset.SourceName),
		slog.Int("posts", len(dataset.Posts)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// Summary aggregates the filtered subset into headline metrics.
func (s *AnalyticsService) Summary(ctx context.Context, sessionID string, criteria domain.FilterCriteria) (domain.Summary, error) {
	posts, err := s.filtered(sessionID, criteria)
	if err != nil {
		return domain.Summary{}, err
	}
	return s.summarizer.Summarize(ctx, posts), nil
}

// Posts returns the filtered table rows in workbook order.
func (s *AnalyticsService) Posts(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.Post, error) {
	return s.filtered(sessionID, criteria)
}

// Trend returns the per-day impressions/engagement series for the filtered
// subset. Undated posts are excluded from the series.
func (s *AnalyticsService) Trend(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.TrendPoint, error) {
	posts, err := s.filtered(sessionID, criteria)
	if err != nil {
		return nil, err
	}
	return s.summarizer.DailyTrend(ctx, posts), nil
}

// Scatter returns impressions vs engagement-rate points for the filtered
// subset.
func (s *AnalyticsService) Scatter(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.ScatterPoint, error) {
	posts, err := s.filtered(sessionID, criteria)
	if err != nil {
		return nil, err
	}
	return s.summarizer.Scatter(ctx, posts), nil
}

// TopPosts ranks the filtered subset by the requested metric. n <= 0 falls
// back to the default leaderboard size.
func (s *AnalyticsService) TopPosts(ctx context.Context, sessionID string, criteria domain.FilterCriteria, metric domain.TopMetric, n int) ([]domain.RankedPost, error) {
	posts, err := s.filtered(sessionID, criteria)
	if err != nil {
		return nil, err
	}
	return s.summarizer.TopPosts(ctx, posts, metric, n), nil
}

// Facets reports the filter options the session's dataset supports.
func (s *AnalyticsService) Facets(ctx context.Context, sessionID string) (domain.Facets, error) {
	dataset, ok := s.store.Get(sessionID)
	if !ok {
		return domain.Facets{}, apierrors.ErrSessionNotFound
	}
	return dataset.Facets(), nil
}

// ExportCSV streams the filtered subset as CSV to w and returns the number
// of data rows written. The writer receives no bytes when the session is
// unknown, so handlers can still send a clean problem response.
func (s *AnalyticsService) ExportCSV(ctx context.Context, sessionID string, criteria domain.FilterCriteria, w io.Writer) (int, error) {
	posts, err := s.filtered(sessionID, criteria)
	if err != nil {
		return 0, err
	}

	rows, err := s.exporter.ExportPosts(w, posts)
	if err != nil {
		return rows, fmt.Errorf("export csv: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("session_id", sessionID),
		slog.Int("rows", rows))
	return rows, nil
}

// DeleteSession drops the session's dataset. Missing sessions are a no-op;
// the client outcome is the same either way.
func (s *AnalyticsService) DeleteSession(ctx context.Context, sessionID string) {
	s.store.Delete(sessionID)
	s.logger.InfoContext(ctx, "session deleted", slog.String("session_id", sessionID))
}

// SessionCount reports the number of live sessions, surfaced by readiness
// checks and the metrics collector.
func (s *AnalyticsService) SessionCount() int {
	return s.store.Len()
}

// filtered snapshots the session's dataset and applies the filter criteria.
func (s *AnalyticsService) filtered(sessionID string, criteria domain.FilterCriteria) ([]domain.Post, error) {
	dataset, ok := s.store.Get(sessionID)
	if !ok {
		return nil, apierrors.ErrSessionNotFound
	}
	return dataprocessing.ApplyFilter(dataset.Posts, criteria), nil
}
