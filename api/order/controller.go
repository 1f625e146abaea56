/*
Package order - 订单 API 控制器

错误处理原则:
1. 参数绑定错误: 使用 response.HandleError 直接返回 400
2. 业务错误: 使用 response.HandleAppError 自动映射状态码
3. HandleAppError 会自动调用 errors.FromDomainError 转换错误
*/
package order

import (
	"context"
	"net/http"

	"storefront/api/response"
	orderapp "storefront/application/order"
	"storefront/domain/shared"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
)

// Service 是控制器依赖的订单应用服务
type Service interface {
	PlaceOrder(ctx context.Context, req orderapp.PlaceOrderRequest) (*orderapp.OrderResponse, error)
	ConfirmPayment(ctx context.Context, orderID string, req orderapp.ConfirmPaymentRequest) (*orderapp.OrderResponse, error)
	ShipOrder(ctx context.Context, orderID string, req orderapp.ShipOrderRequest) (*orderapp.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string, req orderapp.CancelOrderRequest) (*orderapp.OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*orderapp.OrderResponse, error)
	ListOrders(ctx context.Context, q orderapp.ListOrdersQuery) (*shared.PagedResult[*orderapp.OrderResponse], error)
}

// Controller 订单控制器
type Controller struct {
	orderService Service
}

func NewController(orderService Service) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterRoutes 注册订单路由
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orderGroup := router.Group("/orders")
	{
		orderGroup.POST("", c.PlaceOrder)
		orderGroup.GET("", c.ListOrders)
		orderGroup.GET("/:id", c.GetOrder)
		orderGroup.POST("/:id/payment", c.ConfirmPayment)
		orderGroup.POST("/:id/ship", c.ShipOrder)
		orderGroup.POST("/:id/cancel", c.CancelOrder)
	}
}

// PlaceOrder 下单
// POST /api/v1/orders
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.PlaceOrder(ctx.Request.Context(), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, order, "order placed successfully")
}

// GetOrder 获取订单（含订单项）
// GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.orderService.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order retrieved successfully")
}

// ListOrders 分页查询
// GET /api/v1/orders?customer_id=&status=&page=1&page_size=20
// 非法分页参数由应用层返回 PaginationError，映射为 400
func (c *Controller) ListOrders(ctx *gin.Context) {
	q := orderapp.ListOrdersQuery{Page: 1, PageSize: defaultPageSize}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	page, err := c.orderService.ListOrders(ctx.Request.Context(), q)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePage(ctx, page, "orders retrieved successfully")
}

// ConfirmPayment POST /api/v1/orders/:id/payment
func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	var req orderapp.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.ConfirmPayment(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "payment confirmed")
}

// ShipOrder POST /api/v1/orders/:id/ship
func (c *Controller) ShipOrder(ctx *gin.Context) {
	var req orderapp.ShipOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	order, err := c.orderService.ShipOrder(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order shipped")
}

// CancelOrder POST /api/v1/orders/:id/cancel，请求体可省略
func (c *Controller) CancelOrder(ctx *gin.Context) {
	var req orderapp.CancelOrderRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
			return
		}
	}

	order, err := c.orderService.CancelOrder(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, order, "order cancelled")
}
