package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

// NewPage clamps page number and size to sane bounds.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Limit() int {
	if p.Size == 0 {
		return DefaultPageSize
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

// PageResult is the envelope of every paginated listing.
type PageResult[T any] struct {
	Data        []T `json:"data"`
	TotalRows   int `json:"totalRows"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

func NewPageResult[T any](data []T, total int, page Page) PageResult[T] {
	if data == nil {
		data = make([]T, 0)
	}
	size := page.Limit()
	pages := (total + size - 1) / size
	current := page.Number
	if current < 1 {
		current = 1
	}
	return PageResult[T]{
		Data:        data,
		TotalRows:   total,
		TotalPages:  pages,
		CurrentPage: current,
		PageSize:    size,
	}
}
