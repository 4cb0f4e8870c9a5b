package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"postpulse/pkg/contracts/domain"
)

// PostExporter renders normalized posts and derived series as CSV. Exports
// reflect whatever subset the caller passes in, so filters and search apply
// simply by filtering first.
type PostExporter struct {
	csvWriter *CSVWriter
}

// NewPostExporter creates a new post exporter.
func NewPostExporter(logger *slog.Logger) *PostExporter {
	return &PostExporter{csvWriter: NewCSVWriter(logger)}
}

// PostHeaders is the column order of post exports.
var PostHeaders = []string{
	"title", "display_title", "impressions", "engagement_rate", "ctr", "created_date", "post_type",
}

var trendHeaders = []string{
	"date", "posts", "avg_engagement_rate", "total_impressions", "avg_ctr",
}

var rankedHeaders = []string{"rank", "row", "display_title", "impressions", "value"}

// ExportPosts streams posts to w as CSV with a UTF-8 BOM and returns the
// number of data rows written.
func (e *PostExporter) ExportPosts(w io.Writer, posts []domain.Post) (int, error) {
	stream, err := NewStreamWriter(w, PostHeaders, true)
	if err != nil {
		return 0, err
	}
	for i := range posts {
		if err := stream.WriteRecord(postRecord(&posts[i])); err != nil {
			return i, fmt.Errorf("failed to write post row %d: %w", i+1, err)
		}
	}
	if err := stream.Flush(); err != nil {
		return len(posts), err
	}
	return len(posts), nil
}

// ExportPostsFile writes posts to a CSV file at path.
func (e *PostExporter) ExportPostsFile(path string, posts []domain.Post) (int, error) {
	records := make([][]string, 0, len(posts))
	for i := range posts {
		records = append(records, postRecord(&posts[i]))
	}
	err := e.csvWriter.WriteFile(path, WriteOptions{
		Headers:   PostHeaders,
		Records:   records,
		BOMPrefix: true,
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportTrend writes the daily trend series to w.
func (e *PostExporter) ExportTrend(w io.Writer, points []domain.TrendPoint) error {
	return e.csvWriter.Write(w, WriteOptions{
		Headers:   trendHeaders,
		Records:   trendRecords(points),
		BOMPrefix: true,
	})
}

// ExportTrendFile writes the daily trend series to a CSV file at path.
func (e *PostExporter) ExportTrendFile(path string, points []domain.TrendPoint) error {
	return e.csvWriter.WriteFile(path, WriteOptions{
		Headers:   trendHeaders,
		Records:   trendRecords(points),
		BOMPrefix: true,
	})
}

// ExportRankedFile writes a top-N ranking to a CSV file at path.
func (e *PostExporter) ExportRankedFile(path string, ranked []domain.RankedPost) error {
	records := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		records = append(records, []string{
			formatInt(int64(r.Rank)),
			formatInt(int64(r.Row)),
			r.DisplayTitle,
			formatInt(r.Impressions),
			formatRate(r.Value),
		})
	}
	return e.csvWriter.WriteFile(path, WriteOptions{
		Headers:   rankedHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

func postRecord(p *domain.Post) []string {
	return []string{
		p.Title,
		p.DisplayTitle,
		formatInt(p.Impressions),
		formatRate(p.EngagementRate),
		formatRate(p.CTR),
		formatDate(p.CreatedDate),
		string(p.PostType),
	}
}

func trendRecords(points []domain.TrendPoint) [][]string {
	records := make([][]string, 0, len(points))
	for _, pt := range points {
		d := pt.Date
		records = append(records, []string{
			formatDate(&d),
			formatInt(int64(pt.Posts)),
			formatRate(pt.AvgEngagementRate),
			formatInt(pt.TotalImpressions),
			formatRate(pt.AvgCTR),
		})
	}
	return records
}

// Filename builds a download or artifact name like
// linkedin_analytics_20250630_154503.csv.
func Filename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, t.Format("20060102_150405"))
}
