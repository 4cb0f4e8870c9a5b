package http

import (
	"context"
	"io"

	"postpulse/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the interface for dataset operations
type AnalyticsServiceInterface interface {
	LoadWorkbook(ctx context.Context, sessionID string, r io.Reader, sourceName string) (*domain.UploadResult, error)
	Summary(ctx context.Context, sessionID string, criteria domain.FilterCriteria) (domain.Summary, error)
	Posts(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.Post, error)
	Trend(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.TrendPoint, error)
	Scatter(ctx context.Context, sessionID string, criteria domain.FilterCriteria) ([]domain.ScatterPoint, error)
	TopPosts(ctx context.Context, sessionID string, criteria domain.FilterCriteria, metric domain.TopMetric, n int) ([]domain.RankedPost, error)
	Facets(ctx context.Context, sessionID string) (domain.Facets, error)
	ExportCSV(ctx context.Context, sessionID string, criteria domain.FilterCriteria, w io.Writer) (int, error)
	DeleteSession(ctx context.Context, sessionID string)
}
