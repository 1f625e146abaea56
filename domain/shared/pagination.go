package shared

import "context"

// PagedResult is one page of a filtered listing.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int64
	PageIndex  int
	PageSize   int
}

func (p PagedResult[T]) TotalPages() int {
	if p.PageSize < 1 || p.TotalCount == 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// ListPage paginates spec and runs it against repo. Invalid bounds return a
// *PaginationError before any query is issued.
func ListPage[T AggregateRoot](ctx context.Context, repo Repository[T], spec Specification[T], pageIndex, pageSize int) (*PagedResult[T], error) {
	paged, err := spec.Paginate(pageIndex, pageSize)
	if err != nil {
		return nil, err
	}

	items, total, err := repo.ListWithTotalCount(ctx, paged)
	if err != nil {
		return nil, err
	}

	return &PagedResult[T]{
		Items:      items,
		TotalCount: total,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
	}, nil
}

// MapPage converts the items of a page, keeping its counters.
func MapPage[T, R any](p *PagedResult[T], fn func(T) R) *PagedResult[R] {
	items := make([]R, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &PagedResult[R]{
		Items:      items,
		TotalCount: p.TotalCount,
		PageIndex:  p.PageIndex,
		PageSize:   p.PageSize,
	}
}
