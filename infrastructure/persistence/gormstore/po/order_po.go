package po

import (
	"time"

	"storefront/domain/order"
	"storefront/domain/shared"
)

// OrderPO Order persistence object
// Note: Only used for database mapping, does not contain any business logic.
// Items is declared only so reads can Preload it; writes always Omit
// associations and order_items rows are written explicitly.
type OrderPO struct {
	ID             string        `gorm:"primaryKey;size:36"`
	CustomerID     string        `gorm:"size:64;index;not null"`
	CustomerEmail  string        `gorm:"size:255;not null"`
	Status         string        `gorm:"size:20;index;not null"`
	TotalAmount    int64         `gorm:"not null"`
	TotalCurrency  string        `gorm:"size:3;not null"`
	PaymentRef     string        `gorm:"size:128"`
	TrackingNumber string        `gorm:"size:128"`
	Version        int           `gorm:"not null;default:0"`
	PlacedAt       time.Time     `gorm:"index;not null"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime:false"`
	Items          []OrderItemPO `gorm:"foreignKey:OrderID"`
}

// TableName Specify table name
func (OrderPO) TableName() string {
	return "orders"
}

// OrderItemPO Order item persistence object
type OrderItemPO struct {
	ID               string `gorm:"primaryKey;size:36"`
	OrderID          string `gorm:"size:36;index;not null"`
	ProductID        string `gorm:"size:64;not null"`
	ProductName      string `gorm:"size:255;not null"`
	Quantity         int    `gorm:"not null"`
	UnitPrice        int64  `gorm:"not null"`
	UnitCurrency     string `gorm:"size:3;not null"`
	Subtotal         int64  `gorm:"not null"`
	SubtotalCurrency string `gorm:"size:3;not null"`
}

func (OrderItemPO) TableName() string {
	return "order_items"
}

// FromOrderDomain converts the order row only; items are written separately.
func FromOrderDomain(o *order.Order) *OrderPO {
	return &OrderPO{
		ID:             o.ID(),
		CustomerID:     o.CustomerID(),
		CustomerEmail:  o.CustomerEmail(),
		Status:         string(o.Status()),
		TotalAmount:    o.TotalAmount().Amount(),
		TotalCurrency:  o.TotalAmount().Currency(),
		PaymentRef:     o.PaymentRef(),
		TrackingNumber: o.TrackingNumber(),
		Version:        o.Version(),
		PlacedAt:       o.PlacedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}

func FromOrderItems(orderID string, items []order.OrderItem) []OrderItemPO {
	itemPOs := make([]OrderItemPO, len(items))
	for i, item := range items {
		itemPOs[i] = OrderItemPO{
			ID:               item.ID(),
			OrderID:          orderID,
			ProductID:        item.ProductID(),
			ProductName:      item.ProductName(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice().Amount(),
			UnitCurrency:     item.UnitPrice().Currency(),
			Subtotal:         item.Subtotal().Amount(),
			SubtotalCurrency: item.Subtotal().Currency(),
		}
	}
	return itemPOs
}

// ToDomain rebuilds the aggregate. Without a Preload of Items the order has no lines.
func (po *OrderPO) ToDomain() *order.Order {
	items := make([]order.OrderItem, len(po.Items))
	for i, itemPO := range po.Items {
		items[i] = order.RebuildItemFromDTO(order.ItemReconstructionDTO{
			ID:          itemPO.ID,
			ProductID:   itemPO.ProductID,
			ProductName: itemPO.ProductName,
			Quantity:    itemPO.Quantity,
			UnitPrice:   shared.NewMoney(itemPO.UnitPrice, itemPO.UnitCurrency),
			Subtotal:    shared.NewMoney(itemPO.Subtotal, itemPO.SubtotalCurrency),
		})
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:             po.ID,
		CustomerID:     po.CustomerID,
		CustomerEmail:  po.CustomerEmail,
		Items:          items,
		TotalAmount:    shared.NewMoney(po.TotalAmount, po.TotalCurrency),
		Status:         order.Status(po.Status),
		PaymentRef:     po.PaymentRef,
		TrackingNumber: po.TrackingNumber,
		Version:        po.Version,
		PlacedAt:       po.PlacedAt,
		UpdatedAt:      po.UpdatedAt,
	})
}
