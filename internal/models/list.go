package models

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOptions carries the search, paging and sorting knobs shared by list endpoints.
type ListOptions struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize clamps paging to sane bounds and returns page, size and offset.
func (o ListOptions) Normalize() (page, size, offset int) {
	page = o.Page
	if page < 1 {
		page = 1
	}
	size = o.PageSize
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return page, size, (page - 1) * size
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination builds pagination metadata for opts and total.
func NewPagination(opts ListOptions, total int) *Pagination {
	page, size, _ := opts.Normalize()
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
