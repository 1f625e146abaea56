package outbox

import (
	"storefront/domain/catalog"
	"storefront/domain/order"
)

// DefaultCodecs lists every event the storefront aggregates record. A new
// event type must be added here or commits recording it fail.
func DefaultCodecs() []Codec {
	return []Codec{
		NewJSONCodec[order.OrderPlaced](),
		NewJSONCodec[order.PaymentConfirmed](),
		NewJSONCodec[order.OrderStatusChanged](),
		NewJSONCodec[order.OrderShipped](),
		NewJSONCodec[order.OrderDelivered](),
		NewJSONCodec[order.OrderCancelled](),

		NewJSONCodec[catalog.ProductListed](),
		NewJSONCodec[catalog.ProductPriceChanged](),
		NewJSONCodec[catalog.StockAdjusted](),
		NewJSONCodec[catalog.ProductDiscontinued](),
	}
}

// NewDefaultCodecRegistry builds the registry used by the API and the worker.
func NewDefaultCodecRegistry() (*CodecRegistry, error) {
	return NewCodecRegistry(DefaultCodecs()...)
}
