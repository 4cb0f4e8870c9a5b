package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"postpulse/pkg/contracts/domain"
)

// DefaultTopN is the ranking depth used when a caller asks for a top list
// without saying how deep.
const DefaultTopN = 10

// Summarizer computes headline metrics and chart series over normalized
// posts. All methods are pure over their input: empty input yields zero
// values and empty series, never an error.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. A nil logger falls back to slog.Default.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Summarize computes the headline metrics for the given posts. Averages are
// arithmetic means and 0 when there are no rows; top references pick the
// first maximum in row order and are nil when there are no rows.
func (s *Summarizer) Summarize(ctx context.Context, posts []domain.Post) domain.Summary {
	sum := domain.Summary{TotalPosts: len(posts)}
	if len(posts) == 0 {
		return sum
	}

	var erSum, ctrSum float64
	topER, topImp := 0, 0
	for i, p := range posts {
		sum.TotalImpressions += p.Impressions
		erSum += p.EngagementRate
		ctrSum += p.CTR
		// Strict comparisons keep the first maximum on ties.
		if p.EngagementRate > posts[topER].EngagementRate {
			topER = i
		}
		if p.Impressions > posts[topImp].Impressions {
			topImp = i
		}
	}

	sum.AvgEngagementRate = erSum / float64(len(posts))
	sum.AvgCTR = ctrSum / float64(len(posts))
	sum.TopByEngagement = postRef(posts[topER])
	sum.TopByImpressions = postRef(posts[topImp])

	s.logger.DebugContext(ctx, "summary computed",
		slog.Int("posts", sum.TotalPosts),
		slog.Int64("impressions", sum.TotalImpressions))

	return sum
}

// DailyTrend aggregates posts per calendar day: post count, mean engagement
// rate, mean CTR and total impressions. Rows without a created date do not
// contribute. Points come back ascending by day.
func (s *Summarizer) DailyTrend(ctx context.Context, posts []domain.Post) []domain.TrendPoint {
	type acc struct {
		posts       int
		er, ctr     float64
		impressions int64
	}
	byDay := make(map[time.Time]*acc)
	for _, p := range posts {
		if p.CreatedDate == nil {
			continue
		}
		d := dayOf(*p.CreatedDate)
		a := byDay[d]
		if a == nil {
			a = &acc{}
			byDay[d] = a
		}
		a.posts++
		a.er += p.EngagementRate
		a.ctr += p.CTR
		a.impressions += p.Impressions
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]domain.TrendPoint, 0, len(days))
	for _, d := range days {
		a := byDay[d]
		points = append(points, domain.TrendPoint{
			Date:              d,
			Posts:             a.posts,
			AvgEngagementRate: a.er / float64(a.posts),
			TotalImpressions:  a.impressions,
			AvgCTR:            a.ctr / float64(a.posts),
		})
	}

	s.logger.DebugContext(ctx, "daily trend computed", slog.Int("days", len(points)))
	return points
}

// Scatter maps every post to an impressions-vs-engagement point, preserving
// row order.
func (s *Summarizer) Scatter(ctx context.Context, posts []domain.Post) []domain.ScatterPoint {
	points := make([]domain.ScatterPoint, 0, len(posts))
	for _, p := range posts {
		points = append(points, domain.ScatterPoint{
			Impressions:    p.Impressions,
			EngagementRate: p.EngagementRate,
			DisplayTitle:   p.DisplayTitle,
			PostType:       p.PostType,
		})
	}
	return points
}

// TopPosts ranks posts by the given metric, descending, first maximum winning
// ties via stable sort. n <= 0 uses DefaultTopN; fewer posts than n yields a
// shorter list.
func (s *Summarizer) TopPosts(ctx context.Context, posts []domain.Post, metric domain.TopMetric, n int) []domain.RankedPost {
	if n <= 0 {
		n = DefaultTopN
	}
	value := func(p domain.Post) float64 {
		if metric == domain.TopMetricCTR {
			return p.CTR
		}
		return p.EngagementRate
	}

	idx := make([]int, len(posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return value(posts[idx[a]]) > value(posts[idx[b]])
	})

	if n > len(idx) {
		n = len(idx)
	}
	ranked := make([]domain.RankedPost, 0, n)
	for r := 0; r < n; r++ {
		p := posts[idx[r]]
		ranked = append(ranked, domain.RankedPost{
			Rank:         r + 1,
			Row:          p.Row,
			DisplayTitle: p.DisplayTitle,
			Impressions:  p.Impressions,
			Value:        value(p),
		})
	}

	s.logger.DebugContext(ctx, "top posts ranked",
		slog.String("metric", string(metric)),
		slog.Int("returned", len(ranked)))
	return ranked
}

func postRef(p domain.Post) *domain.PostRef {
	return &domain.PostRef{
		Row:            p.Row,
		DisplayTitle:   p.DisplayTitle,
		Impressions:    p.Impressions,
		EngagementRate: p.EngagementRate,
		CTR:            p.CTR,
	}
}
