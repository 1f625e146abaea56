package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/api/catalog"
	"storefront/api/health"
	"storefront/api/order"
	outboxapi "storefront/api/outbox"
	catalogapp "storefront/application/catalog"
	orderapp "storefront/application/order"
	"storefront/config"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence/database"
	"storefront/infrastructure/persistence/gormstore"
	"storefront/infrastructure/persistence/retry"
	"storefront/infrastructure/persistence/sqlite"
	"storefront/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Field      string          `json:"field"`
	Code       int             `json:"code"`
	RequestID  string          `json:"request_id"`
	Pagination struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{
		Driver:      "sqlite",
		Database:    sqlite.MemoryDSN("api_" + name),
		LogLevel:    "silent",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	registry, err := gormstore.NewDefaultRegistry()
	require.NoError(t, err)
	codecs, err := outbox.NewDefaultCodecRegistry()
	require.NoError(t, err)

	retryCfg := retry.DefaultConfig
	retryCfg.InitialDelay = time.Millisecond
	retryCfg.MaxDelay = 2 * time.Millisecond
	factory := gormstore.NewUnitOfWorkFactory(db, registry, outbox.NewInterceptor(codecs, clock.Real{}), retryCfg)
	outboxRepo := gormstore.NewOutboxRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Name: "storefront", Version: "test", Env: "test"}}
	router := NewRouter(cfg, Controllers{
		Health:  health.NewController(cfg, sqlDB, outboxRepo),
		Order:   order.NewController(orderapp.NewService(factory)),
		Catalog: catalog.NewController(catalogapp.NewService(factory)),
		Outbox:  outboxapi.NewController(outboxRepo),
	}, prometheus.NewRegistry())
	router.SetupRoutes()
	return router.GetEngine()
}

func call(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestCheckoutFlow(t *testing.T) {
	engine := newTestEngine(t)

	w, env := call(t, engine, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "MUG-1", "name": "Mug", "price": 900, "currency": "EUR", "stock": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product catalogapp.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.NotEmpty(t, env.RequestID)

	w, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer_id":    "c-1",
		"customer_email": "alice@example.com",
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var placed orderapp.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, int64(1800), placed.TotalAmount.Amount)

	w, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{
		"customer_id":    "c-1",
		"customer_email": "alice@example.com",
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", env.Error)
	assert.Equal(t, "quantity", env.Field)

	w, _ = call(t, engine, http.MethodPost, "/api/v1/orders/"+placed.ID+"/payment", map[string]any{"payment_ref": "pay-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = call(t, engine, http.MethodGet, "/api/v1/orders/"+placed.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got orderapp.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "PAID", got.Status)
	assert.Len(t, got.Items, 1)

	w, env = call(t, engine, http.MethodGet, "/api/v1/orders?customer_id=c-1&page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	w, env = call(t, engine, http.MethodGet, "/api/v1/outbox/pending?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending outboxapi.PendingResponse
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	// ProductListed, StockAdjusted, OrderPlaced, PaymentConfirmed, OrderStatusChanged
	assert.Equal(t, int64(5), pending.Total)
	assert.Len(t, pending.Messages, 2)
}

func TestErrorMapping(t *testing.T) {
	engine := newTestEngine(t)

	w, env := call(t, engine, http.MethodGet, "/api/v1/orders?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)
	assert.Equal(t, "page_index", env.Field)

	w, env = call(t, engine, http.MethodGet, "/api/v1/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error)

	w, env = call(t, engine, http.MethodPost, "/api/v1/orders", map[string]any{"customer_id": "c-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error)

	w, env = call(t, engine, http.MethodGet, "/api/v1/orders?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", env.Field)
}

func TestCatalogEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	for _, sku := range []string{"A-1", "A-2", "A-3"} {
		w, _ := call(t, engine, http.MethodPost, "/api/v1/products", map[string]any{
			"sku": sku, "name": "Lamp " + sku, "price": 2500, "currency": "EUR", "stock": 1,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := call(t, engine, http.MethodGet, "/api/v1/products?q=lamp&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), env.Pagination.TotalItems)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	var items []catalogapp.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)

	w, _ = call(t, engine, http.MethodPut, "/api/v1/products/"+items[0].ID+"/price", map[string]any{"price": 1999, "currency": "EUR"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = call(t, engine, http.MethodPost, "/api/v1/products/"+items[0].ID+"/restock", map[string]any{"quantity": 4})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, engine, http.MethodDelete, "/api/v1/products/"+items[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = call(t, engine, http.MethodGet, "/api/v1/products?q=lamp&count=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), env.Pagination.TotalItems)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestHealthAndMetrics(t *testing.T) {
	engine := newTestEngine(t)

	w, _ := call(t, engine, http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, engine, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pending messages")

	w, _ = call(t, engine, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/v1/health",status="200"} 1`)
}

func TestPagingBoundsAreRejected(t *testing.T) {
	engine := newTestEngine(t)

	for _, url := range []string{
		"/api/v1/products?page_size=101",
		"/api/v1/orders?customer_id=c-1&page_size=1000",
		"/api/v1/products?page=9223372036854775807&page_size=100",
		"/api/v1/orders?customer_id=c-1&page=0",
	} {
		w, env := call(t, engine, http.MethodGet, url, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.False(t, env.Success, url)
	}

	w, _ := call(t, engine, http.MethodGet, "/api/v1/products?page_size=100", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
