// Command analyze parses a LinkedIn workbook export on the command line and
// writes the same artifacts the dashboard serves: the normalized post table,
// a summary, the daily trend and a top-post ranking. Useful for scripting
// and for inspecting a workbook without starting the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"postpulse/internal/config"
	"postpulse/internal/dataprocessing"
	"postpulse/internal/exporter"
	"postpulse/internal/infrastructure"
	"postpulse/internal/validation"
	"postpulse/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "path to the LinkedIn workbook (.xlsx or .xls)")
	out := flag.String("out", "", "output directory for artifacts (defaults to data/exports relative to the executable)")
	sheet := flag.String("sheet", "", "sheet holding per-post rows (defaults to the standard export sheet)")
	postType := flag.String("post-type", "", "filter: organic, sponsored, total or unknown")
	from := flag.String("from", "", "filter: start date, YYYY-MM-DD inclusive")
	to := flag.String("to", "", "filter: end date, YYYY-MM-DD inclusive")
	search := flag.String("search", "", "filter: case-insensitive title substring")
	top := flag.Int("top", 10, "number of posts in the top ranking")
	topMetric := flag.String("top-metric", "engagement", "ranking metric: engagement or ctr")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -in <workbook.xlsx> [-out <dir>] [filters]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	criteria, err := buildCriteria(*postType, *from, *to, *search)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	metric, ok := domain.ParseTopMetric(*topMetric)
	if !ok {
		fmt.Fprintf(os.Stderr, "invalid -top-metric %q (accepted: engagement, ctr)\n", *topMetric)
		os.Exit(2)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	// Artifact locations: the well-known names from the paths registry,
	// redirected when -out is given.
	postsPath := paths.PostsCSV
	summaryPath := paths.SummaryJSON
	trendPath := paths.TrendCSV
	topPath := paths.TopCSV
	if *out != "" {
		postsPath = filepath.Join(*out, filepath.Base(paths.PostsCSV))
		summaryPath = filepath.Join(*out, filepath.Base(paths.SummaryJSON))
		trendPath = filepath.Join(*out, filepath.Base(paths.TrendCSV))
		topPath = filepath.Join(*out, filepath.Base(paths.TopCSV))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("analyze.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateWorkbookFile(*in); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *out != "" {
		if err := validator.ValidateOutputDirectory(*out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "Analyzing workbook",
		slog.String("input", *in),
		slog.String("output_dir", filepath.Dir(postsPath)))

	file, err := os.Open(*in)
	if err != nil {
		logger.Error("Failed to open workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer file.Close()

	opts := dataprocessing.DefaultParseOptions()
	if *sheet != "" {
		opts.Sheet = *sheet
	}
	parser := dataprocessing.NewParser(logger, opts)

	dataset, err := parser.Parse(ctx, file, filepath.Base(*in))
	if err != nil {
		logger.Error("Workbook parsing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posts := dataprocessing.ApplyFilter(dataset.Posts, criteria)
	logger.InfoContext(ctx, "Workbook parsed",
		slog.Int("total_rows", len(dataset.Posts)),
		slog.Int("after_filters", len(posts)))

	summarizer := dataprocessing.NewSummarizer(logger)
	summary := summarizer.Summarize(ctx, posts)
	trend := summarizer.DailyTrend(ctx, posts)
	ranked := summarizer.TopPosts(ctx, posts, metric, *top)

	postExporter := exporter.NewPostExporter(logger)

	var g errgroup.Group
	g.Go(func() error {
		_, err := postExporter.ExportPostsFile(postsPath, posts)
		return err
	})
	g.Go(func() error {
		return postExporter.ExportTrendFile(trendPath, trend)
	})
	g.Go(func() error {
		return postExporter.ExportRankedFile(topPath, ranked)
	})
	g.Go(func() error {
		return writeSummaryJSON(summaryPath, summary)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Artifact export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Artifacts written",
		slog.String("posts", postsPath),
		slog.String("summary", summaryPath),
		slog.String("trend", trendPath),
		slog.String("top", topPath))

	fmt.Printf("Posts:            %d\n", summary.TotalPosts)
	fmt.Printf("Impressions:      %d\n", summary.TotalImpressions)
	fmt.Printf("Avg engagement:   %.2f%%\n", summary.AvgEngagementRate*100)
	fmt.Printf("Avg CTR:          %.2f%%\n", summary.AvgCTR*100)
	if summary.TopByEngagement != nil {
		fmt.Printf("Best post:        %s\n", summary.TopByEngagement.DisplayTitle)
	}
}

// buildCriteria validates the filter flags the same way the HTTP API
// validates its query parameters.
func buildCriteria(postType, from, to, search string) (domain.FilterCriteria, error) {
	var c domain.FilterCriteria

	if postType != "" {
		parsed := domain.ParsePostType(postType)
		if parsed == domain.PostTypeUnknown && !strings.EqualFold(postType, "unknown") {
			return c, fmt.Errorf("invalid -post-type %q (accepted: organic, sponsored, total, unknown)", postType)
		}
		c.PostType = parsed
	}

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c, fmt.Errorf("invalid -from %q: expected YYYY-MM-DD", from)
		}
		t = t.UTC()
		c.From = &t
	}

	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c, fmt.Errorf("invalid -to %q: expected YYYY-MM-DD", to)
		}
		t = t.UTC()
		c.To = &t
	}

	c.Search = strings.TrimSpace(search)
	return c, nil
}

func writeSummaryJSON(path string, summary domain.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}
