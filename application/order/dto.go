package order

import "time"

// PlaceOrderRequest 表示下单入参。商品名称与单价以目录为准，不信任客户端。
type PlaceOrderRequest struct {
	CustomerID    string             `json:"customer_id" binding:"required"`
	CustomerEmail string             `json:"customer_email" binding:"required,email"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest 表示下单时的单个商品项。
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" binding:"required"`
}

type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ListOrdersQuery 分页从 1 开始
type ListOrdersQuery struct {
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100"`
}

// OrderResponse 表示订单返回模型。
type OrderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	CustomerEmail  string              `json:"customer_email"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    MoneyResponse       `json:"total_amount"`
	Status         string              `json:"status"`
	PaymentRef     string              `json:"payment_ref,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Version        int                 `json:"version"`
	PlacedAt       time.Time           `json:"placed_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// OrderItemResponse 表示订单项返回模型。
type OrderItemResponse struct {
	ID          string        `json:"id"`
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Quantity    int           `json:"quantity"`
	UnitPrice   MoneyResponse `json:"unit_price"`
	Subtotal    MoneyResponse `json:"subtotal"`
}

// MoneyResponse 金额以最小货币单位表示
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
