package gormstore

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/domain/catalog"
	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence/retry"
	"storefront/infrastructure/persistence/sqlite"
	"storefront/pkg/clock"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	registry *RepositoryRegistry
	clock    *clock.Fake
	factory  *UnitOfWorkFactory
	queries  *atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlite.Open(sqlite.MemoryDSN(name), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	require.NoError(t, AutoMigrate(db))

	queries := &atomic.Int64{}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		queries.Add(1)
	}))

	registry, err := NewDefaultRegistry()
	require.NoError(t, err)
	codecs, err := outbox.NewDefaultCodecRegistry()
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	retryCfg := retry.DefaultConfig
	retryCfg.InitialDelay = time.Millisecond
	retryCfg.MaxDelay = 2 * time.Millisecond

	return &testEnv{
		db:       db,
		registry: registry,
		clock:    clk,
		factory:  NewUnitOfWorkFactory(db, registry, outbox.NewInterceptor(codecs, clk), retryCfg),
		queries:  queries,
	}
}

func (e *testEnv) uow() *UnitOfWork {
	return e.factory.New().(*UnitOfWork)
}

func products(t *testing.T, uow shared.UnitOfWork) shared.Repository[*catalog.Product] {
	t.Helper()
	repo, err := shared.RepositoryFor(uow, catalog.Repository)
	require.NoError(t, err)
	return repo
}

func orders(t *testing.T, uow shared.UnitOfWork) shared.Repository[*order.Order] {
	t.Helper()
	repo, err := shared.RepositoryFor(uow, order.Repository)
	require.NoError(t, err)
	return repo
}

func newProduct(t *testing.T, sku, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.NewProductParams{
		SKU:   sku,
		Name:  name,
		Price: shared.NewMoney(price, "EUR"),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func newOrder(t *testing.T, customerID string, items ...order.ItemRequest) *order.Order {
	t.Helper()
	if len(items) == 0 {
		items = []order.ItemRequest{{ProductID: "p-1", ProductName: "Mug", Quantity: 1, UnitPrice: shared.NewMoney(900, "EUR")}}
	}
	o, err := order.NewOrder(customerID, customerID+"@example.com", items)
	require.NoError(t, err)
	return o
}

func (e *testEnv) seedProducts(t *testing.T, ps ...*catalog.Product) {
	t.Helper()
	uow := e.uow()
	repo := products(t, uow)
	for _, p := range ps {
		repo.Add(p)
	}
	require.NoError(t, uow.Commit(t.Context()))
}

func (e *testEnv) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
