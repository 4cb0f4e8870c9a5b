package dataprocessing

import (
	"fmt"
	"strings"
)

// SheetNotFoundError reports that the expected posts sheet is absent. The
// available sheet names are carried verbatim so the caller can surface them.
type SheetNotFoundError struct {
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("sheet %q not found: workbook has no sheets", e.Sheet)
	}
	return fmt.Sprintf("sheet %q not found: workbook sheets are %s", e.Sheet, strings.Join(e.Available, ", "))
}

// MissingColumnsError reports required header columns that are wholly absent
// from the posts sheet. Columns carries the canonical display names, e.g.
// "Impressions".
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Columns, ", "))
}
