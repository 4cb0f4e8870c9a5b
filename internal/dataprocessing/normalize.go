package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"postpulse/pkg/contracts/domain"
)

const (
	// maxDisplayTitleRunes caps display titles that carry no sentence
	// terminator; longer titles are cut to 97 runes plus an ellipsis.
	maxDisplayTitleRunes = 100

	untitledDisplay = "(untitled)"
)

// excelEpoch is day zero of the 1900 date system. Using Dec 30 instead of
// Dec 31 absorbs Excel's phantom 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// excelSerialMax bounds the values treated as serial dates (~year 2447).
// Larger numerics are more plausibly compact dates like 20250115.
const excelSerialMax = 200000

// normalizeRow converts one raw sheet row into a Post. Field-level failures
// never reject the row; they fall back to zero values per field.
func normalizeRow(row []string, cols map[string]int, ordinal int) domain.Post {
	cell := func(key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	title := cell(headerTitle)
	return domain.Post{
		Title:          title,
		DisplayTitle:   displayTitle(title),
		Impressions:    parseImpressions(cell(headerImpressions)),
		EngagementRate: normalizeRate(cell(headerEngagement)),
		CTR:            normalizeRate(cell(headerCTR)),
		CreatedDate:    parseCreatedDate(cell(headerCreated)),
		PostType:       domain.ParsePostType(cell(headerPostType)),
		Row:            ordinal,
	}
}

// normalizeRate parses an engagement or click-through rate into a fraction.
// Exports are inconsistent about units: percent-formatted cells arrive as
// "5.00%", percent points as "5", and true fractions as "0.05". A trailing
// percent sign is authoritative; otherwise any magnitude above 1 is read as
// percent points. Unparseable input yields 0.
func normalizeRate(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s, ok := strings.CutSuffix(raw, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v / 100
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if math.Abs(v) > 1 {
		return v / 100
	}
	return v
}

// parseImpressions reads an impression count, tolerating thousands separators
// and fractional renderings. Unparseable input yields 0.
func parseImpressions(raw string) int64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	return 0
}

// parseCreatedDate reads a created-date cell. Numeric cells in serial range
// are Excel serial dates (the fraction is time of day); everything else goes
// through dateparse, which covers the textual formats exports use. Failure
// returns nil and the row is kept without a date.
func parseCreatedDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
		if serial >= 1 && serial < excelSerialMax {
			t := excelSerialDate(serial)
			return &t
		}
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return &t
	}
	return nil
}

func excelSerialDate(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	if frac > 0 {
		t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return t
}

// displayTitle derives the short title shown in tables and rankings: the text
// up to and including the first sentence terminator, or the full title when
// none exists, truncated past 100 runes.
func displayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return untitledDisplay
	}
	if i := strings.IndexAny(title, ".!?"); i >= 0 {
		return strings.TrimSpace(title[:i+1])
	}
	runes := []rune(title)
	if len(runes) <= maxDisplayTitleRunes {
		return title
	}
	return string(runes[:maxDisplayTitleRunes-3]) + "..."
}

// isBlankRow reports whether every cell of the row is empty after trimming.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
