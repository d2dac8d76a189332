package domain

import "time"

// Pagination is a cursor-based page request. Cursor is the opaque position
// returned with previous results; only entities with a strictly greater
// cursor are returned, ordered by cursor ascending.
type Pagination struct {
	Cursor   int64
	PageSize int
}

// DefaultPagination returns the first page with the default page size.
func DefaultPagination() Pagination {
	return Pagination{Cursor: 0, PageSize: 25}
}

// TimestampFilter restricts collection queries to a DateModified range.
// Nil bounds are open.
type TimestampFilter struct {
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time
}

// Matches reports whether t falls inside the filter range.
func (f TimestampFilter) Matches(t time.Time) bool {
	if f.ModifiedAfter != nil && !t.After(*f.ModifiedAfter) {
		return false
	}
	if f.ModifiedBefore != nil && !t.Before(*f.ModifiedBefore) {
		return false
	}
	return true
}
