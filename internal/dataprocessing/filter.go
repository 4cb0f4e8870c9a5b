package dataprocessing

import (
	"strings"
	"time"

	"postpulse/pkg/contracts/domain"
)

// ApplyFilter returns the posts matching c, preserving input order. Criteria
// AND together; see domain.FilterCriteria for per-field semantics. The result
// is always a fresh slice and the input is never mutated.
func ApplyFilter(posts []domain.Post, c domain.FilterCriteria) []domain.Post {
	out := make([]domain.Post, 0, len(posts))
	search := strings.ToLower(strings.TrimSpace(c.Search))

	for _, p := range posts {
		if c.PostType != "" && p.PostType != c.PostType {
			continue
		}
		if c.HasDateRange() {
			// An active date filter can only keep rows that have a date.
			if p.CreatedDate == nil {
				continue
			}
			d := dayOf(*p.CreatedDate)
			if c.From != nil && d.Before(dayOf(*c.From)) {
				continue
			}
			if c.To != nil && d.After(dayOf(*c.To)) {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// dayOf truncates to calendar-day precision so range bounds stay inclusive
// regardless of the time-of-day component serial dates carry.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
