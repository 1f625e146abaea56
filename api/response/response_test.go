package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/domain/catalog"
	"storefront/domain/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Set(RequestIDKey, "req-1")
	h(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", catalog.NewProductNotFoundError("p-1"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", catalog.NewInsufficientStockError("p-1", 0, 1), http.StatusConflict, "CONFLICT"},
		{"pagination", &shared.PaginationError{Field: "pageIndex", Value: -1, Min: 0}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serve(t, func(c *gin.Context) { HandleAppError(c, tt.err) })
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.code, body.Error)
			assert.False(t, body.Success)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestHandleAppErrorHidesInternalMessage(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) { HandleAppError(c, errors.New("password=hunter2")) })
	assert.Equal(t, "internal server error", body.Message)
}

func TestHandlePage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandlePage(c, &shared.PagedResult[string]{TotalCount: 0, PageIndex: 2, PageSize: 10}, "ok")

	var body struct {
		Data       []string   `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
	assert.Equal(t, Pagination{Page: 2, PageSize: 10, TotalItems: 0, TotalPages: 0, HasNext: false}, body.Pagination)
}

func TestHandlePageHasNext(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Set(RequestIDKey, "req-2")

	HandlePage(c, &shared.PagedResult[int]{Items: []int{1, 2}, TotalCount: 5, PageIndex: 1, PageSize: 2}, "ok")

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Pagination)
	assert.True(t, body.Success)
	assert.Equal(t, "req-2", body.RequestID)
	assert.Equal(t, 3, body.Pagination.TotalPages)
	assert.True(t, body.Pagination.HasNext)
}
