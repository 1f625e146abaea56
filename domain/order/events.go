package order

import (
	"time"

	"storefront/domain/shared"
)

// Event tags. They are persisted in the outbox and must never change.
const (
	EventOrderPlaced        shared.EventType = "order.placed"
	EventPaymentConfirmed   shared.EventType = "order.payment_confirmed"
	EventOrderStatusChanged shared.EventType = "order.status_changed"
	EventOrderShipped       shared.EventType = "order.shipped"
	EventOrderDelivered     shared.EventType = "order.delivered"
	EventOrderCancelled     shared.EventType = "order.cancelled"
)

type PlacedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type OrderPlaced struct {
	OrderID       string       `json:"order_id"`
	CustomerID    string       `json:"customer_id"`
	CustomerEmail string       `json:"customer_email"`
	TotalAmount   int64        `json:"total_amount"`
	Currency      string       `json:"currency"`
	Items         []PlacedItem `json:"items"`
	Timestamp     time.Time    `json:"occurred_on"`
}

func (e OrderPlaced) EventType() shared.EventType { return EventOrderPlaced }
func (e OrderPlaced) AggregateID() string         { return e.OrderID }
func (e OrderPlaced) OccurredOn() time.Time       { return e.Timestamp }

// PaymentConfirmed triggers the payment-confirmation email.
type PaymentConfirmed struct {
	OrderID       string    `json:"order_id"`
	CustomerEmail string    `json:"customer_email"`
	PaymentRef    string    `json:"payment_ref"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"occurred_on"`
}

func (e PaymentConfirmed) EventType() shared.EventType { return EventPaymentConfirmed }
func (e PaymentConfirmed) AggregateID() string         { return e.OrderID }
func (e PaymentConfirmed) OccurredOn() time.Time       { return e.Timestamp }

type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e OrderStatusChanged) EventType() shared.EventType { return EventOrderStatusChanged }
func (e OrderStatusChanged) AggregateID() string         { return e.OrderID }
func (e OrderStatusChanged) OccurredOn() time.Time       { return e.Timestamp }

type OrderShipped struct {
	OrderID        string    `json:"order_id"`
	CustomerEmail  string    `json:"customer_email"`
	TrackingNumber string    `json:"tracking_number"`
	Timestamp      time.Time `json:"occurred_on"`
}

func (e OrderShipped) EventType() shared.EventType { return EventOrderShipped }
func (e OrderShipped) AggregateID() string         { return e.OrderID }
func (e OrderShipped) OccurredOn() time.Time       { return e.Timestamp }

type OrderDelivered struct {
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"occurred_on"`
}

func (e OrderDelivered) EventType() shared.EventType { return EventOrderDelivered }
func (e OrderDelivered) AggregateID() string         { return e.OrderID }
func (e OrderDelivered) OccurredOn() time.Time       { return e.Timestamp }

type OrderCancelled struct {
	OrderID    string    `json:"order_id"`
	FromStatus Status    `json:"from_status"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"occurred_on"`
}

func (e OrderCancelled) EventType() shared.EventType { return EventOrderCancelled }
func (e OrderCancelled) AggregateID() string         { return e.OrderID }
func (e OrderCancelled) OccurredOn() time.Time       { return e.Timestamp }
