package dto

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery is the page/page_size pair every list endpoint accepts.
type PageQuery struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// Normalize clamps page to >= 1 and page_size to [1, MaxPageSize].
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of a list result.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}
