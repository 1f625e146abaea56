package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"storefront/domain/catalog"
	"storefront/domain/order"
	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, env *testEnv, n int) []*catalog.Product {
	t.Helper()
	ps := make([]*catalog.Product, n)
	for i := range ps {
		// two products per name so the id tie-break matters
		ps[i] = newProduct(t, fmt.Sprintf("sku-%02d", i), fmt.Sprintf("Item %02d", i/2), int64(100*(i+1)), i)
	}
	env.seedProducts(t, ps...)
	return ps
}

func TestListPageReconstructsTheCatalog(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env, 25)
	repo := products(t, env.uow())
	spec := catalog.All().SortBy(catalog.FieldName, shared.Asc)

	seen := map[string]bool{}
	var names []string
	for page := 1; page <= 3; page++ {
		env.queries.Store(0)
		result, err := shared.ListPage(t.Context(), repo, spec, page, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, env.queries.Load(), "one count and one page query")

		assert.EqualValues(t, 25, result.TotalCount)
		assert.Equal(t, 3, result.TotalPages())
		for _, p := range result.Items {
			assert.False(t, seen[p.ID()], "pages must not overlap")
			seen[p.ID()] = true
			names = append(names, p.Name())
		}
		if page < 3 {
			assert.Len(t, result.Items, 10)
		} else {
			assert.Len(t, result.Items, 5)
		}
	}
	assert.Len(t, seen, 25)
	assert.IsNonDecreasing(t, names)
}

func TestInvalidPaginationIssuesNoQuery(t *testing.T) {
	env := newTestEnv(t)
	repo := products(t, env.uow())
	env.queries.Store(0)

	_, err := shared.ListPage(t.Context(), repo, catalog.All(), 0, 10)
	var perr *shared.PaginationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "page_index", perr.Field)

	_, _, err = repo.ListWithTotalCount(t.Context(), catalog.All().Page(-1, 10))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = repo.List(t.Context(), catalog.All().Page(0, 0))
	assert.ErrorAs(t, err, &perr)

	assert.Zero(t, env.queries.Load())
}

func TestCountOnlySkipsPageQuery(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env, 6)
	repo := products(t, env.uow())

	env.queries.Store(0)
	items, total, err := repo.ListWithTotalCount(t.Context(), catalog.PriceBetween(catalog.All(), 200, 400).CountOnly())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 1, env.queries.Load())
}

func TestFiltersTranslate(t *testing.T) {
	env := newTestEnv(t)
	ps := seedCatalog(t, env, 6)
	repo := products(t, env.uow())

	n, err := repo.Count(t.Context(), catalog.ByIDs(ps[0].ID(), ps[3].ID(), "missing"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err := repo.List(t.Context(), catalog.NameContains(catalog.All(), "item 01"))
	require.NoError(t, err)
	assert.Len(t, list, 2, "LIKE is case-insensitive on sqlite")

	list, err = repo.List(t.Context(), catalog.All().Where(shared.Gt(catalog.FieldStock, 3)).SortBy(catalog.FieldStock, shared.Desc))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Stock())

	p, ok, err := repo.FirstOrDefault(t.Context(), catalog.BySKU(" sku-02 "))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ps[2].ID(), p.ID())

	_, ok, err = repo.FirstOrDefault(t.Context(), catalog.ByID("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	env := newTestEnv(t)
	repo := products(t, env.uow())

	_, err := repo.List(t.Context(), catalog.All().Where(shared.Eq("password", "x")))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = repo.List(t.Context(), catalog.All().SortBy("drop table", shared.Asc))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = repo.List(t.Context(), catalog.All().Include("items"))
	var derr *shared.DomainError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "items", derr.Field)
}

func TestUnknownNamesRejectedRegardlessOfData(t *testing.T) {
	env := newTestEnv(t)
	repo := products(t, env.uow())
	bad := catalog.All().SortBy("no_such_field", shared.Asc).Include("no_such_relation")

	env.queries.Store(0)
	_, _, err := repo.ListWithTotalCount(t.Context(), bad)
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "empty table")
	_, err = repo.Count(t.Context(), bad)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Zero(t, env.queries.Load())

	seedCatalog(t, env, 3)

	_, _, err = repo.ListWithTotalCount(t.Context(), bad.CountOnly())
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "count only")

	_, _, err = repo.ListWithTotalCount(t.Context(), bad)
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "rows present")
}

func TestIncludeLoadsOrderItems(t *testing.T) {
	env := newTestEnv(t)
	uow := env.uow()
	o := newOrder(t, "c-9")
	orders(t, uow).Add(o)
	require.NoError(t, uow.Commit(t.Context()))

	repo := orders(t, env.uow())
	bare, _, err := repo.FirstOrDefault(t.Context(), order.ByID(o.ID()))
	require.NoError(t, err)
	assert.Empty(t, bare.Items())
	assert.Equal(t, o.TotalAmount(), bare.TotalAmount())

	full, _, err := repo.FirstOrDefault(t.Context(), order.WithItems(order.ByID(o.ID())))
	require.NoError(t, err)
	require.Len(t, full.Items(), 1)
	assert.Equal(t, "Mug", full.Items()[0].ProductName())
	assert.Equal(t, "c-9@example.com", full.CustomerEmail())
}

func TestSpecificationIsReusableForCountAndPage(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env, 12)
	repo := products(t, env.uow())

	filtered := catalog.PriceBetween(catalog.Active(), 300, 0)
	paged := filtered.Page(0, 4)

	total, err := repo.Count(t.Context(), paged)
	require.NoError(t, err)
	assert.EqualValues(t, 10, total, "count ignores the paging window")

	page, err := repo.List(t.Context(), paged)
	require.NoError(t, err)
	assert.Len(t, page, 4)

	all, err := repo.List(t.Context(), filtered)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
