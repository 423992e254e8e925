package domain

// ListFilter narrows event listings. Empty fields match everything.
// Date is compared against the canonical YYYY-MM-DD form.
type ListFilter struct {
	Date string
	Mode Mode
}

// Page defaults applied by PaginationParams.Normalized.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects a window of a listing. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Normalized replaces a page or page size below 1 with its default and caps
// the page size at MaxPageSize, so every store receives a bounded window.
func (p PaginationParams) Normalized() PaginationParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	p.PageSize = min(p.PageSize, MaxPageSize)
	return p
}

// Offset is the number of records skipped before the page starts.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages is the number of pages needed to hold total records.
func (p PaginationParams) TotalPages(total int) int {
	if p.PageSize < 1 || total < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
