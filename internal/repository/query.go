package repository

import "math"

const (
	// DefaultPerPage is the number of products returned when the caller does not ask for a page size.
	DefaultPerPage = 15
	// MaxPerPage is the largest page size a listing returns.
	MaxPerPage = 100
	// MaxPage keeps the row offset of any page within int range.
	MaxPage = math.MaxInt/MaxPerPage + 1
)

// ProductQuery holds the filters and page selection for listing products.
type ProductQuery struct {
	// Search matches products whose name or description contains it, ignoring case.
	Search string
	// IsActive restricts the result to products with the given activation flag when set.
	IsActive *bool

	Page    int
	PerPage int
}

// NewProductQuery returns a query for the first page with the default page size.
func NewProductQuery() *ProductQuery {
	return &ProductQuery{
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

func (q *ProductQuery) WithSearch(search string) *ProductQuery {
	q.Search = search
	return q
}

func (q *ProductQuery) WithActive(active bool) *ProductQuery {
	q.IsActive = &active
	return q
}

// ApplyPagination sets the page and page size, falling back to defaults for non-positive values.
// The page is capped at MaxPage and the page size at MaxPerPage.
func (q *ProductQuery) ApplyPagination(page, perPage int) *ProductQuery {
	q.Page = 1
	if page > 0 {
		q.Page = min(MaxPage, page)
	}
	q.PerPage = DefaultPerPage
	if perPage > 0 {
		q.PerPage = min(MaxPerPage, perPage)
	}
	return q
}

// Normalized returns a copy of q with defaults applied to page and page size.
func (q ProductQuery) Normalized() ProductQuery {
	q.ApplyPagination(q.Page, q.PerPage)
	return q
}

// Offset is the number of rows skipped before the current page.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
