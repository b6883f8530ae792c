package store

import "time"

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a list query.
type Page struct {
	Number int // 1-based
	Limit  int
}

// NewPage normalizes a requested page number and size.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case limit < 1:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// TimeRange is a half-open interval [From, To).
type TimeRange struct {
	From time.Time
	To   time.Time
}
