package catalog

import (
	"time"

	"storefront/domain/shared"
)

const (
	EventProductListed       shared.EventType = "catalog.product_listed"
	EventProductPriceChanged shared.EventType = "catalog.price_changed"
	EventStockAdjusted       shared.EventType = "catalog.stock_adjusted"
	EventProductDiscontinued shared.EventType = "catalog.product_discontinued"
)

type ProductListed struct {
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	Stock     int       `json:"stock"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e ProductListed) EventType() shared.EventType { return EventProductListed }
func (e ProductListed) AggregateID() string         { return e.ProductID }
func (e ProductListed) OccurredOn() time.Time       { return e.Timestamp }

type ProductPriceChanged struct {
	ProductID string    `json:"product_id"`
	OldPrice  int64     `json:"old_price"`
	NewPrice  int64     `json:"new_price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e ProductPriceChanged) EventType() shared.EventType { return EventProductPriceChanged }
func (e ProductPriceChanged) AggregateID() string         { return e.ProductID }
func (e ProductPriceChanged) OccurredOn() time.Time       { return e.Timestamp }

// StockAdjusted has a negative Delta for reservations.
type StockAdjusted struct {
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"`
	Stock     int       `json:"stock"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e StockAdjusted) EventType() shared.EventType { return EventStockAdjusted }
func (e StockAdjusted) AggregateID() string         { return e.ProductID }
func (e StockAdjusted) OccurredOn() time.Time       { return e.Timestamp }

type ProductDiscontinued struct {
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e ProductDiscontinued) EventType() shared.EventType { return EventProductDiscontinued }
func (e ProductDiscontinued) AggregateID() string         { return e.ProductID }
func (e ProductDiscontinued) OccurredOn() time.Time       { return e.Timestamp }
