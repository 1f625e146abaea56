package shared

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	id  string
	tag EventType
	at  time.Time
}

func (e testEvent) EventType() EventType  { return e.tag }
func (e testEvent) AggregateID() string   { return e.id }
func (e testEvent) OccurredOn() time.Time { return e.at }

type testAggregate struct {
	EventRecorder
	id string
}

func (a *testAggregate) ID() string   { return a.id }
func (a *testAggregate) Version() int { return 0 }

func TestEventRecorder(t *testing.T) {
	agg := &testAggregate{id: "a-1"}
	assert.Nil(t, agg.PendingEvents())

	now := time.Now()
	agg.RecordEvent(testEvent{id: "a-1", tag: "first", at: now})
	agg.RecordEvent(testEvent{id: "a-1", tag: "second", at: now})
	agg.RecordEvent(testEvent{id: "a-1", tag: "first", at: now})

	events := agg.PendingEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventType("first"), events[0].EventType())
	assert.Equal(t, EventType("second"), events[1].EventType())

	// reading does not drain, and the returned slice is a copy
	events[0] = nil
	assert.Len(t, agg.PendingEvents(), 3)
	assert.NotNil(t, agg.PendingEvents()[0])

	var source EventSource = agg
	source.ClearEvents()
	assert.Empty(t, agg.PendingEvents())
	source.ClearEvents()
	assert.Empty(t, agg.PendingEvents())
}

func TestValidateEvent(t *testing.T) {
	now := time.Now()
	assert.NoError(t, ValidateEvent(testEvent{id: "a", tag: "t", at: now}))
	assert.Error(t, ValidateEvent(nil))
	assert.Error(t, ValidateEvent(testEvent{id: "a", at: now}))
	assert.Error(t, ValidateEvent(testEvent{tag: "t", at: now}))
	assert.Error(t, ValidateEvent(testEvent{id: "a", tag: "t"}))
}

func TestMoney(t *testing.T) {
	a := NewMoney(150, "CNY")
	sum, err := a.Add(NewMoney(50, "CNY"))
	require.NoError(t, err)
	assert.Equal(t, int64(200), sum.Amount())

	_, err = a.Add(NewMoney(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = NewMoney(math.MaxInt64, "CNY").Add(NewMoney(1, "CNY"))
	assert.ErrorIs(t, err, ErrAmountOverflow)

	product, err := a.Multiply(3)
	require.NoError(t, err)
	assert.True(t, product.Equals(NewMoney(450, "CNY")))

	_, err = NewMoney(math.MaxInt64/2+1, "CNY").Multiply(2)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	assert.True(t, product.IsGreaterThan(a))
}

func TestEmail(t *testing.T) {
	e, err := NewEmail("  Someone@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", e.Value())

	_, err = NewEmail("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestDomainErrors(t *testing.T) {
	err := NewNotFoundError("order", "o-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "order not found: o-1", err.Error())

	var derr *DomainError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "order", derr.Entity)
	assert.NotEmpty(t, derr.Stack())

	assert.ErrorIs(t, NewConflictError("order", "stale"), ErrConflict)
	v := NewValidationError("product", "price", "must be positive")
	assert.ErrorIs(t, v, ErrInvalidInput)
	require.True(t, errors.As(v, &derr))
	assert.Equal(t, "price", derr.Field)
}

type fakeRepo struct {
	Repository[*testAggregate]
	items   []*testAggregate
	calls   int
	lastQry Query
}

func (r *fakeRepo) ListWithTotalCount(_ context.Context, spec Specification[*testAggregate]) ([]*testAggregate, int64, error) {
	r.calls++
	r.lastQry = spec.Query()
	w := r.lastQry.Window
	end := min(w.Skip+w.Take, len(r.items))
	if w.Skip >= len(r.items) {
		return nil, int64(len(r.items)), nil
	}
	return r.items[w.Skip:end], int64(len(r.items)), nil
}

func TestListPage(t *testing.T) {
	repo := &fakeRepo{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		repo.items = append(repo.items, &testAggregate{id: id})
	}
	spec := NewSpecification[*testAggregate](Eq("kind", "x"))

	page, err := ListPage[*testAggregate](context.Background(), repo, spec, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].ID())
	assert.Len(t, repo.lastQry.Criteria, 1)

	mapped := MapPage(page, func(a *testAggregate) string { return a.ID() })
	assert.Equal(t, []string{"c", "d"}, mapped.Items)
	assert.Equal(t, 2, mapped.PageIndex)

	_, err = ListPage[*testAggregate](context.Background(), repo, spec, 0, 2)
	var perr *PaginationError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, repo.calls, "invalid pagination must not reach the repository")
}

type stubUoW struct {
	repos map[string]any
}

func (u *stubUoW) Repository(name string) (any, error) {
	r, ok := u.repos[name]
	if !ok {
		return nil, errors.New("unknown repository " + name)
	}
	return r, nil
}

func (u *stubUoW) Commit(context.Context) error { return nil }

func TestRepositoryFor(t *testing.T) {
	key := NewRepositoryKey[*testAggregate]("tests")
	repo := &fakeRepo{}
	uow := &stubUoW{repos: map[string]any{"tests": repo, "other": "not a repo"}}

	got, err := RepositoryFor(uow, key)
	require.NoError(t, err)
	assert.Same(t, repo, got)

	_, err = RepositoryFor(uow, NewRepositoryKey[*testAggregate]("other"))
	assert.Error(t, err)

	_, err = RepositoryFor(uow, NewRepositoryKey[*testAggregate]("missing"))
	assert.Error(t, err)
}
