package catalog

import "time"

type ListProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Stock       int    `json:"stock" binding:"min=0"`
}

type ChangePriceRequest struct {
	Price    int64  `json:"price" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// SearchProductsQuery 价格边界 <= 0 表示不限；CountOnly 只返回总数
type SearchProductsQuery struct {
	Term      string `form:"q"`
	MinPrice  int64  `form:"min_price"`
	MaxPrice  int64  `form:"max_price"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size" binding:"omitempty,max=100"`
	CountOnly bool   `form:"count"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
