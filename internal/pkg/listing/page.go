package listing

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a filtered and sorted sequence plus the counts the table footer shows
type Page[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	From        int  `json:"from"` // 1-based index of the first item shown, 0 when empty
	To          int  `json:"to"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// clampPageSize replaces a non-positive size with the default and caps it at MaxPageSize
func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// TotalPages returns the number of pages for n items; an empty list still has one page
func TotalPages(n, size int) int {
	size = clampPageSize(size)
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate slices items for the 1-based page. Pages past the end are clamped to the last page.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = clampPageSize(size)
	total := len(items)
	pages := TotalPages(total, size)
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

	p := Page[T]{
		Items:       make([]T, 0, end-start),
		CurrentPage: page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  pages,
		HasPrevious: page > 1,
		HasNext:     page < pages,
	}
	p.Items = append(p.Items, items[start:end]...)
	if total > 0 {
		p.From = start + 1
		p.To = end
	}
	return p
}

// Map converts the items of a page, keeping its counts
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Items:       make([]U, 0, len(p.Items)),
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		From:        p.From,
		To:          p.To,
		HasPrevious: p.HasPrevious,
		HasNext:     p.HasNext,
	}
	for _, item := range p.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
