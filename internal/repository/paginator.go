package repository

import "github.com/iyhunko/inventory-service/internal/model"

// Pagination describes the position of a page within the whole result set.
type Pagination struct {
	CurrentPage int
	PerPage     int
	Total       int
	LastPage    int
	// From and To are the 1-based positions of the first and last item on the page.
	// Both are nil when the page is empty.
	From *int
	To   *int
}

// ProductPage is a page of products with its pagination metadata.
type ProductPage struct {
	Products   []*model.Product
	Pagination Pagination
}

// NewPagination computes the metadata for a page holding count items out of total.
func NewPagination(page, perPage, total, count int) Pagination {
	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    1,
	}
	if perPage > 0 && total > 0 {
		p.LastPage = (total + perPage - 1) / perPage
	}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		p.From = &from
		p.To = &to
	}
	return p
}
