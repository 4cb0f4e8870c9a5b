package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatRate renders a rate fraction with the shortest exact representation,
// so re-parsing an exported file reproduces the value bit for bit.
func formatRate(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int64 value for CSV output.
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatDate renders an optional date as 2006-01-02, or blank when absent.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
