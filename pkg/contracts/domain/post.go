package domain

import (
	"strings"
	"time"
)

// Post represents a single normalized row of a LinkedIn post-performance export.
type Post struct {
	Title          string     `json:"title"`
	DisplayTitle   string     `json:"display_title"`
	Impressions    int64      `json:"impressions"`
	EngagementRate float64    `json:"engagement_rate"`
	CTR            float64    `json:"ctr"`
	CreatedDate    *time.Time `json:"created_date,omitempty"`
	PostType       PostType   `json:"post_type"`
	Row            int        `json:"row"`
}

// PostType classifies how a post was distributed. LinkedIn exports also carry
// aggregate "Total" rows; those are kept as ordinary rows of type PostTypeTotal.
type PostType string

const (
	PostTypeOrganic   PostType = "Organic"
	PostTypeSponsored PostType = "Sponsored"
	PostTypeTotal     PostType = "Total"
	PostTypeUnknown   PostType = "Unknown"
)

// ParsePostType maps a raw spreadsheet value to a PostType. Matching is
// case-insensitive and ignores surrounding whitespace; anything unrecognized
// (including the empty string) becomes PostTypeUnknown.
func ParsePostType(s string) PostType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "organic":
		return PostTypeOrganic
	case "sponsored":
		return PostTypeSponsored
	case "total":
		return PostTypeTotal
	default:
		return PostTypeUnknown
	}
}

// Valid reports whether t is one of the declared PostType values.
func (t PostType) Valid() bool {
	switch t {
	case PostTypeOrganic, PostTypeSponsored, PostTypeTotal, PostTypeUnknown:
		return true
	}
	return false
}

// Dataset is an immutable snapshot of one uploaded workbook. A new upload
// replaces the whole snapshot; readers holding the previous one keep a
// consistent view.
type Dataset struct {
	ID          string    `json:"id" validate:"required,uuid"`
	SourceName  string    `json:"source_name"`
	Sheet       string    `json:"sheet"`
	LoadedAt    time.Time `json:"loaded_at"`
	Posts       []Post    `json:"posts"`
	SkippedRows int       `json:"skipped_rows"`
}

// Facets returns the filter options the dataset supports: the distinct post
// types present (in first-seen order) and the inclusive created-date bounds.
// Date bounds are nil when no row carries a date.
func (d *Dataset) Facets() Facets {
	f := Facets{TotalPosts: len(d.Posts)}
	seen := make(map[PostType]bool, 4)
	for i := range d.Posts {
		p := &d.Posts[i]
		if !seen[p.PostType] {
			seen[p.PostType] = true
			f.PostTypes = append(f.PostTypes, p.PostType)
		}
		if p.CreatedDate == nil {
			continue
		}
		if f.DateMin == nil || p.CreatedDate.Before(*f.DateMin) {
			t := *p.CreatedDate
			f.DateMin = &t
		}
		if f.DateMax == nil || p.CreatedDate.After(*f.DateMax) {
			t := *p.CreatedDate
			f.DateMax = &t
		}
	}
	return f
}

// Facets describes the filterable surface of a dataset.
type Facets struct {
	TotalPosts int        `json:"total_posts"`
	PostTypes  []PostType `json:"post_types"`
	DateMin    *time.Time `json:"date_min,omitempty"`
	DateMax    *time.Time `json:"date_max,omitempty"`
}
