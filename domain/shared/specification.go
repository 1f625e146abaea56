package shared

import (
	"math"
	"slices"
)

// Operator is a comparison used by a Criterion.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNeq  Operator = "neq"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
	OpLike Operator = "like"
)

// Criterion is one filter predicate over a named field of the aggregate.
// Field names are domain names; repositories map them to storage columns.
type Criterion struct {
	Field  string
	Op     Operator
	Values []any
}

func Eq(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpEq, Values: []any{value}}
}

func Neq(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpNeq, Values: []any{value}}
}

func Gt(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpGt, Values: []any{value}}
}

func Gte(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpGte, Values: []any{value}}
}

func Lt(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpLt, Values: []any{value}}
}

func Lte(field string, value any) Criterion {
	return Criterion{Field: field, Op: OpLte, Values: []any{value}}
}

func Like(field, pattern string) Criterion {
	return Criterion{Field: field, Op: OpLike, Values: []any{pattern}}
}

func In(field string, values ...any) Criterion {
	return Criterion{Field: field, Op: OpIn, Values: slices.Clone(values)}
}

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Field     string
	Direction Direction
}

// Window is a skip/take paging window.
type Window struct {
	Skip int
	Take int
}

// Query is the read-only descriptor a repository translates into storage calls.
type Query struct {
	Criteria  []Criterion
	Includes  []string
	Sort      *Sort
	Window    *Window
	CountOnly bool
}

// Validate rejects paging windows a repository must not execute.
func (q Query) Validate() error {
	if q.Window == nil {
		return nil
	}
	if q.Window.Skip < 0 {
		return &PaginationError{Field: "skip", Value: q.Window.Skip, Min: 0}
	}
	if q.Window.Take < 1 {
		return &PaginationError{Field: "take", Value: q.Window.Take, Min: 1}
	}
	return nil
}

// Specification describes what data is wanted for aggregate type T.
// It is an immutable value: every composition method returns a new
// Specification and leaves the receiver untouched, so the same value can be
// evaluated for the total count and for the bounded page.
//
// Composition rules: Where and Include are additive (filters are ANDed),
// SortBy and Page replace the previous setting.
type Specification[T any] struct {
	criteria  []Criterion
	includes  []string
	sort      *Sort
	window    *Window
	countOnly bool
}

// NewSpecification returns an empty specification matching every T.
func NewSpecification[T any](criteria ...Criterion) Specification[T] {
	return Specification[T]{}.Where(criteria...)
}

func (s Specification[T]) Where(criteria ...Criterion) Specification[T] {
	if len(criteria) == 0 {
		return s
	}
	next := s
	next.criteria = make([]Criterion, 0, len(s.criteria)+len(criteria))
	next.criteria = append(next.criteria, s.criteria...)
	for _, c := range criteria {
		c.Values = slices.Clone(c.Values)
		next.criteria = append(next.criteria, c)
	}
	return next
}

func (s Specification[T]) Include(relations ...string) Specification[T] {
	next := s
	next.includes = slices.Clone(s.includes)
	for _, r := range relations {
		if !slices.Contains(next.includes, r) {
			next.includes = append(next.includes, r)
		}
	}
	return next
}

func (s Specification[T]) SortBy(field string, direction Direction) Specification[T] {
	next := s
	next.sort = &Sort{Field: field, Direction: direction}
	return next
}

func (s Specification[T]) Page(skip, take int) Specification[T] {
	next := s
	next.window = &Window{Skip: skip, Take: take}
	return next
}

// Paginate applies a 1-based page. pageIndex or pageSize below 1, or a page
// whose offset overflows int, yields a *PaginationError and the receiver is
// returned unchanged.
func (s Specification[T]) Paginate(pageIndex, pageSize int) (Specification[T], error) {
	if pageIndex < 1 {
		return s, &PaginationError{Field: "page_index", Value: pageIndex, Min: 1}
	}
	if pageSize < 1 {
		return s, &PaginationError{Field: "page_size", Value: pageSize, Min: 1}
	}
	if pageIndex-1 > math.MaxInt/pageSize {
		return s, &PaginationError{Field: "page_index", Value: pageIndex, Min: 1, Max: math.MaxInt/pageSize + 1}
	}
	return s.Page((pageIndex-1)*pageSize, pageSize), nil
}

func (s Specification[T]) CountOnly() Specification[T] {
	next := s
	next.countOnly = true
	return next
}

// Unpaged drops the paging window, keeping filters, includes and sort.
func (s Specification[T]) Unpaged() Specification[T] {
	next := s
	next.window = nil
	return next
}

// Query returns a descriptor that shares no memory with s.
func (s Specification[T]) Query() Query {
	q := Query{
		Includes:  slices.Clone(s.includes),
		CountOnly: s.countOnly,
	}
	if len(s.criteria) > 0 {
		q.Criteria = make([]Criterion, len(s.criteria))
		for i, c := range s.criteria {
			c.Values = slices.Clone(c.Values)
			q.Criteria[i] = c
		}
	}
	if s.sort != nil {
		sort := *s.sort
		q.Sort = &sort
	}
	if s.window != nil {
		window := *s.window
		q.Window = &window
	}
	return q
}
