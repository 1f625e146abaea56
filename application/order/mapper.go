package order

import (
	"storefront/domain/order"
	"storefront/domain/shared"
)

func toMoney(m shared.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items()))
	for i, item := range o.Items() {
		items[i] = OrderItemResponse{
			ID:          item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Quantity:    item.Quantity(),
			UnitPrice:   toMoney(item.UnitPrice()),
			Subtotal:    toMoney(item.Subtotal()),
		}
	}

	return &OrderResponse{
		ID:             o.ID(),
		CustomerID:     o.CustomerID(),
		CustomerEmail:  o.CustomerEmail(),
		Items:          items,
		TotalAmount:    toMoney(o.TotalAmount()),
		Status:         string(o.Status()),
		PaymentRef:     o.PaymentRef(),
		TrackingNumber: o.TrackingNumber(),
		Version:        o.Version(),
		PlacedAt:       o.PlacedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}
