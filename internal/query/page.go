package query

import "watchflip/internal/domain"

// PageSizes are the sizes the inventory table offers.
var PageSizes = []int{10, 20, 50, 100}

const DefaultPageSize = 20

type Page struct {
	Items      []domain.Watch `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }
func (p Page) Prev() int     { return p.Page - 1 }
func (p Page) Next() int     { return p.Page + 1 }

// NormalizePageSize falls back to DefaultPageSize for unsupported sizes.
func NormalizePageSize(size int) int {
	for _, s := range PageSizes {
		if s == size {
			return size
		}
	}
	return DefaultPageSize
}

// Paginate clamps page into [1, totalPages]. An empty input is page 1 of 1.
func Paginate(ws []domain.Watch, page, size int) Page {
	size = NormalizePageSize(size)
	total := len(ws)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	items := make([]domain.Watch, 0, end-start)
	items = append(items, ws[start:end]...)
	return Page{Items: items, Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// Run filters, sorts and paginates in that order.
func Run(ws []domain.Watch, c Criteria, s Sort, page, size int) Page {
	return Paginate(s.Apply(Filter(ws, c)), page, size)
}
