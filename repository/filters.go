package repository

import (
	"strings"
	"time"
)

// CourseFilter selects published courses for the public catalog
type CourseFilter struct {
	Categories []uint   `json:"categories,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	// Level matches a group age range of the course
	Level  string `json:"level,omitempty"`
	Search string `json:"search,omitempty"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// Normalize trims the text filters and clamps paging
func (f CourseFilter) Normalize() CourseFilter {
	f.Level = strings.TrimSpace(f.Level)
	f.Search = strings.TrimSpace(f.Search)
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 12)
	return f
}

// HasActiveFilters reports whether anything other than paging narrows the result
func (f CourseFilter) HasActiveFilters() bool {
	return len(f.Categories) > 0 || f.MinPrice != nil || f.MaxPrice != nil ||
		f.Level != "" || f.Search != ""
}

// Offset is the row offset for the current page
func (f CourseFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// RelatedPostsLimit caps the "related posts" listing
const RelatedPostsLimit = 3

// PostFilter selects blog posts or news
type PostFilter struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	ExcludeID uint
	AuthorID  uint
}

// IsRelated reports whether the filter asks for posts related to another post
func (f PostFilter) IsRelated() bool {
	return f.Category != "" && f.ExcludeID != 0
}

// Normalize clamps paging. Related listings always return the first RelatedPostsLimit rows.
func (f PostFilter) Normalize() PostFilter {
	f.Status = strings.TrimSpace(f.Status)
	f.Category = strings.TrimSpace(f.Category)
	if f.IsRelated() {
		f.Page, f.Limit = 1, RelatedPostsLimit
		return f
	}
	f.Page, f.Limit = clampPage(f.Page, f.Limit, 10)
	return f
}

// Offset is the row offset for the current page
func (f PostFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// PageRequest is plain paging for admin listings
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps paging
func (p PageRequest) Normalize() PageRequest {
	p.Page, p.Limit = clampPage(p.Page, p.Limit, 10)
	return p
}

// Offset is the row offset for the current page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SnapshotFilter narrows statistics snapshot listings
type SnapshotFilter struct {
	CourseID *uint
	From     *time.Time
	To       *time.Time
}

func clampPage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
