package domain

import (
	"time"
)

// FilterCriteria narrows a dataset before aggregation. Criteria compose with
// AND semantics and every field is optional; the zero value keeps all rows.
type FilterCriteria struct {
	// PostType keeps only rows of the given type. Empty keeps all types,
	// including aggregate "Total" rows.
	PostType PostType `json:"post_type,omitempty"`
	// From and To bound CreatedDate inclusively. When either is set, rows
	// without a created date are excluded.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
	// Search is a case-insensitive substring match on the full title,
	// applied after the other criteria.
	Search string `json:"search,omitempty"`
}

// IsZero reports whether the criteria would pass every row through.
func (c FilterCriteria) IsZero() bool {
	return c.PostType == "" && c.From == nil && c.To == nil && c.Search == ""
}

// HasDateRange reports whether at least one date bound is set.
func (c FilterCriteria) HasDateRange() bool {
	return c.From != nil || c.To != nil
}

// Summary holds the headline metrics for a (possibly filtered) set of posts.
type Summary struct {
	TotalPosts        int      `json:"total_posts"`
	TotalImpressions  int64    `json:"total_impressions"`
	AvgEngagementRate float64  `json:"avg_engagement_rate"`
	AvgCTR            float64  `json:"avg_ctr"`
	TopByEngagement   *PostRef `json:"top_by_engagement,omitempty"`
	TopByImpressions  *PostRef `json:"top_by_impressions,omitempty"`
}

// PostRef is a compact reference to a post used in summaries and rankings.
type PostRef struct {
	Row            int     `json:"row"`
	DisplayTitle   string  `json:"display_title"`
	Impressions    int64   `json:"impressions"`
	EngagementRate float64 `json:"engagement_rate"`
	CTR            float64 `json:"ctr"`
}

// TrendPoint is one day of the engagement trend series. Days are aggregated
// over rows that carry a created date and sorted ascending.
type TrendPoint struct {
	Date              time.Time `json:"date"`
	Posts             int       `json:"posts"`
	AvgEngagementRate float64   `json:"avg_engagement_rate"`
	TotalImpressions  int64     `json:"total_impressions"`
	AvgCTR            float64   `json:"avg_ctr"`
}

// ScatterPoint is one post in the impressions-vs-engagement scatter series.
type ScatterPoint struct {
	Impressions    int64    `json:"impressions"`
	EngagementRate float64  `json:"engagement_rate"`
	DisplayTitle   string   `json:"display_title"`
	PostType       PostType `json:"post_type"`
}

// TopMetric selects the ranking dimension for top-post queries.
type TopMetric string

const (
	TopMetricEngagement TopMetric = "engagement"
	TopMetricCTR        TopMetric = "ctr"
)

// ParseTopMetric validates a raw metric name. The empty string defaults to
// TopMetricEngagement; anything else unrecognized returns false.
func ParseTopMetric(s string) (TopMetric, bool) {
	switch TopMetric(s) {
	case "":
		return TopMetricEngagement, true
	case TopMetricEngagement, TopMetricCTR:
		return TopMetric(s), true
	default:
		return "", false
	}
}

// RankedPost is one entry of a top-N ranking. Value carries the ranked
// metric (engagement rate or CTR) as a fraction.
type RankedPost struct {
	Rank         int     `json:"rank"`
	Row          int     `json:"row"`
	DisplayTitle string  `json:"display_title"`
	Impressions  int64   `json:"impressions"`
	Value        float64 `json:"value"`
}

// UploadResult is returned after a workbook has been parsed and stored.
type UploadResult struct {
	SessionID   string    `json:"session_id"`
	DatasetID   string    `json:"dataset_id"`
	SourceName  string    `json:"source_name"`
	Sheet       string    `json:"sheet"`
	TotalRows   int       `json:"total_rows"`
	SkippedRows int       `json:"skipped_rows"`
	LoadedAt    time.Time `json:"loaded_at"`
	Facets      Facets    `json:"facets"`
}
