package mapper

// Page is one page of query results plus the total match count across
// all pages.
type Page[T any] struct {
	// Page is the 1-based page number actually served.
	Page int64
	// Size is the requested page size.
	Size int64
	// Total is the number of rows matching the predicates overall.
	Total int64
	// Records holds the page's entities; nil when Total is zero.
	Records []T
}

// Offset returns the row offset this page starts at.
func (p *Page[T]) Offset() int64 {
	return (p.Page - 1) * p.Size
}

// Pages returns the number of pages needed to cover Total.
func (p *Page[T]) Pages() int64 {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.Pages()
}
