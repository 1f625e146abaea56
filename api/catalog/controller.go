// Package catalog - 商品目录 API 控制器
package catalog

import (
	"context"
	"net/http"

	"storefront/api/response"
	catalogapp "storefront/application/catalog"
	"storefront/domain/shared"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

type Service interface {
	ListProduct(ctx context.Context, req catalogapp.ListProductRequest) (*catalogapp.ProductResponse, error)
	ChangePrice(ctx context.Context, productID string, req catalogapp.ChangePriceRequest) (*catalogapp.ProductResponse, error)
	Restock(ctx context.Context, productID string, req catalogapp.RestockRequest) (*catalogapp.ProductResponse, error)
	Discontinue(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (*catalogapp.ProductResponse, error)
	SearchProducts(ctx context.Context, q catalogapp.SearchProductsQuery) (*shared.PagedResult[*catalogapp.ProductResponse], error)
}

type Controller struct {
	catalogService Service
}

func NewController(catalogService Service) *Controller {
	return &Controller{catalogService: catalogService}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.POST("", c.ListProduct)
		products.GET("", c.SearchProducts)
		products.GET("/:id", c.GetProduct)
		products.PUT("/:id/price", c.ChangePrice)
		products.POST("/:id/restock", c.Restock)
		products.DELETE("/:id", c.Discontinue)
	}
}

// ListProduct POST /api/v1/products
func (c *Controller) ListProduct(ctx *gin.Context) {
	var req catalogapp.ListProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	product, err := c.catalogService.ListProduct(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, product, "product listed successfully")
}

// SearchProducts GET /api/v1/products?q=&min_price=&max_price=&page=&page_size=&count=
// count=true 只返回总数
func (c *Controller) SearchProducts(ctx *gin.Context) {
	q := catalogapp.SearchProductsQuery{Page: 1, PageSize: defaultPageSize}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	page, err := c.catalogService.SearchProducts(ctx.Request.Context(), q)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePage(ctx, page, "products retrieved successfully")
}

// GetProduct GET /api/v1/products/:id
func (c *Controller) GetProduct(ctx *gin.Context) {
	product, err := c.catalogService.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, product, "product retrieved successfully")
}

// ChangePrice PUT /api/v1/products/:id/price
func (c *Controller) ChangePrice(ctx *gin.Context) {
	var req catalogapp.ChangePriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	product, err := c.catalogService.ChangePrice(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, product, "price changed")
}

// Restock POST /api/v1/products/:id/restock
func (c *Controller) Restock(ctx *gin.Context) {
	var req catalogapp.RestockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	product, err := c.catalogService.Restock(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, product, "product restocked")
}

// Discontinue DELETE /api/v1/products/:id，软删除
func (c *Controller) Discontinue(ctx *gin.Context) {
	if err := c.catalogService.Discontinue(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleNoContent(ctx)
}
