package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"postpulse/pkg/contracts/domain"
)

// SheetAllPosts is the sheet LinkedIn writes per-post rows to. Matching is
// exact and case-sensitive; exports localize content but not sheet names.
const SheetAllPosts = "All posts"

// Normalized header keys. Header cells are lowercased and trimmed before
// lookup, mirroring how the export varies capitalization between versions.
const (
	headerTitle       = "post title"
	headerImpressions = "impressions"
	headerEngagement  = "engagement rate"
	headerCTR         = "click through rate (ctr)"
	headerCreated     = "created date"
	headerPostType    = "post type"
)

// requiredColumns pairs each mandatory header key with the display name used
// in MissingColumnsError messages.
var requiredColumns = []struct {
	key     string
	display string
}{
	{headerTitle, "Post title"},
	{headerImpressions, "Impressions"},
	{headerEngagement, "Engagement rate"},
	{headerCTR, "Click through rate (CTR)"},
}

// ParseOptions controls where the parser looks for post rows.
type ParseOptions struct {
	// Sheet is the sheet holding per-post rows. Defaults to SheetAllPosts.
	Sheet string
	// HeaderRow is the 1-based position of the header row. Defaults to 2:
	// LinkedIn exports put a banner line first and headers second.
	HeaderRow int
}

// DefaultParseOptions returns the options matching a stock LinkedIn export.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Sheet: SheetAllPosts, HeaderRow: 2}
}

// Parser turns an uploaded workbook into a normalized Dataset.
type Parser struct {
	logger *slog.Logger
	opts   ParseOptions
}

// NewParser creates a parser. A nil logger falls back to slog.Default, and
// zero option fields take their defaults.
func NewParser(logger *slog.Logger, opts ParseOptions) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Sheet == "" {
		opts.Sheet = SheetAllPosts
	}
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = DefaultParseOptions().HeaderRow
	}
	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		opts:   opts,
	}
}

// Parse reads a workbook from r and returns the normalized dataset.
// It fails with ErrUnsupportedFormat, *SheetNotFoundError or
// *MissingColumnsError for the structural problems a caller can act on;
// cell-level problems never fail the parse (see normalizeRow).
func (p *Parser) Parse(ctx context.Context, r io.Reader, sourceName string) (*domain.Dataset, error) {
	wb, err := OpenWorkbook(r, sourceName)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if !containsSheet(sheets, p.opts.Sheet) {
		return nil, &SheetNotFoundError{Sheet: p.opts.Sheet, Available: sheets}
	}

	rows, err := wb.Rows(p.opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", sourceName, err)
	}

	cols, err := p.mapColumns(rows)
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, max(len(rows)-p.opts.HeaderRow, 0))
	skipped := 0
	for i := p.opts.HeaderRow; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			skipped++
			continue
		}
		posts = append(posts, normalizeRow(rows[i], cols, len(posts)+1))
	}

	ds := &domain.Dataset{
		ID:          uuid.New().String(),
		SourceName:  sourceName,
		Sheet:       p.opts.Sheet,
		LoadedAt:    time.Now().UTC(),
		Posts:       posts,
		SkippedRows: skipped,
	}

	p.logger.InfoContext(ctx, "workbook parsed",
		slog.String("source", sourceName),
		slog.String("sheet", p.opts.Sheet),
		slog.Int("posts", len(posts)),
		slog.Int("blank_rows_skipped", skipped))

	return ds, nil
}

// mapColumns locates every known column in the header row. All required
// columns must be present; optional ones (created date, post type) may be
// absent and their fields default during normalization.
func (p *Parser) mapColumns(rows [][]string) (map[string]int, error) {
	var header []string
	if idx := p.opts.HeaderRow - 1; idx < len(rows) {
		header = rows[idx]
	}

	cols := make(map[string]int, len(header))
	for j, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = j
		}
	}

	var missing []string
	for _, rc := range requiredColumns {
		if _, ok := cols[rc.key]; !ok {
			missing = append(missing, rc.display)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return cols, nil
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}
