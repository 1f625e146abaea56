/*
Package order is the checkout subdomain.

An Order is the consistency boundary for its items: items are created,
removed and priced only through the Order's methods. Every successful state
change records one or more domain events on the aggregate's buffer; the
persistence layer drains that buffer into the outbox when the unit of work
commits.
*/
package order

import (
	"fmt"
	"time"

	"storefront/domain/shared"

	"github.com/google/uuid"
)

// Order aggregate root
type Order struct {
	shared.EventRecorder

	id             string
	customerID     string
	customerEmail  string
	items          []OrderItem
	totalAmount    shared.Money
	status         Status
	paymentRef     string
	trackingNumber string
	version        int // optimistic lock, bumped by MarkPersisted
	placedAt       time.Time
	updatedAt      time.Time

	// dirty tracking since load
	addedItems   []OrderItem
	removedItems []OrderItem
	isNew        bool
}

// OrderItem is an entity inside the Order aggregate. It has no global identity.
type OrderItem struct {
	id          string
	productID   string
	productName string
	quantity    int
	unitPrice   shared.Money
	subtotal    shared.Money
}

// Status 订单状态
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ItemRequest describes one line of a new order.
type ItemRequest struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   shared.Money
}

// ============================================================================
// Factory
// ============================================================================

// NewOrder validates the request and records OrderPlaced. Nothing is recorded
// when validation fails.
func NewOrder(customerID, customerEmail string, requests []ItemRequest) (*Order, error) {
	if customerID == "" {
		return nil, NewValidationError("customer_id", "customer id is required")
	}
	email, err := shared.NewEmail(customerEmail)
	if err != nil {
		return nil, NewValidationError("customer_email", err.Error())
	}
	if len(requests) == 0 {
		return nil, NewEmptyOrderItemsError()
	}

	items := make([]OrderItem, 0, len(requests))
	for _, req := range requests {
		item, err := newItem(req)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	total, err := sumItems(items)
	if err != nil {
		return nil, err
	}
	if total.Amount() <= 0 {
		return nil, NewValidationError("items", ErrOrderTotalAmountNotPositive.Error())
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	now := time.Now().UTC()
	o := &Order{
		id:            orderID.String(),
		customerID:    customerID,
		customerEmail: email.Value(),
		items:         items,
		totalAmount:   total,
		status:        StatusPending,
		placedAt:      now,
		updatedAt:     now,
		isNew:         true,
	}

	placed := make([]PlacedItem, len(items))
	for i, it := range items {
		placed[i] = PlacedItem{
			ProductID: it.productID,
			Quantity:  it.quantity,
			UnitPrice: it.unitPrice.Amount(),
		}
	}
	o.RecordEvent(OrderPlaced{
		OrderID:       o.id,
		CustomerID:    o.customerID,
		CustomerEmail: o.customerEmail,
		TotalAmount:   total.Amount(),
		Currency:      total.Currency(),
		Items:         placed,
		Timestamp:     now,
	})

	return o, nil
}

func newItem(req ItemRequest) (OrderItem, error) {
	if req.ProductID == "" {
		return OrderItem{}, NewValidationError("product_id", "product id is required")
	}
	if req.Quantity <= 0 {
		return OrderItem{}, NewValidationError("quantity", ErrInvalidQuantity.Error())
	}
	subtotal, err := req.UnitPrice.Multiply(req.Quantity)
	if err != nil {
		return OrderItem{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return OrderItem{}, fmt.Errorf("failed to generate order item ID: %w", err)
	}
	return OrderItem{
		id:          id.String(),
		productID:   req.ProductID,
		productName: req.ProductName,
		quantity:    req.Quantity,
		unitPrice:   req.UnitPrice,
		subtotal:    subtotal,
	}, nil
}

func sumItems(items []OrderItem) (shared.Money, error) {
	if len(items) == 0 {
		return shared.Money{}, nil
	}
	total := shared.NewMoney(0, items[0].subtotal.Currency())
	for _, it := range items {
		var err error
		total, err = total.Add(it.subtotal)
		if err != nil {
			return shared.Money{}, err
		}
	}
	return total, nil
}

// ============================================================================
// Reconstruction (repository use only)
// ============================================================================

// ReconstructionDTO carries persisted state back into an Order.
type ReconstructionDTO struct {
	ID             string
	CustomerID     string
	CustomerEmail  string
	Items          []OrderItem
	TotalAmount    shared.Money
	Status         Status
	PaymentRef     string
	TrackingNumber string
	Version        int
	PlacedAt       time.Time
	UpdatedAt      time.Time
}

// RebuildFromDTO 仅供仓储层使用，重建的聚合没有待发布事件
func RebuildFromDTO(dto ReconstructionDTO) *Order {
	return &Order{
		id:             dto.ID,
		customerID:     dto.CustomerID,
		customerEmail:  dto.CustomerEmail,
		items:          dto.Items,
		totalAmount:    dto.TotalAmount,
		status:         dto.Status,
		paymentRef:     dto.PaymentRef,
		trackingNumber: dto.TrackingNumber,
		version:        dto.Version,
		placedAt:       dto.PlacedAt,
		updatedAt:      dto.UpdatedAt,
	}
}

type ItemReconstructionDTO struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   shared.Money
	Subtotal    shared.Money
}

func RebuildItemFromDTO(dto ItemReconstructionDTO) OrderItem {
	return OrderItem{
		id:          dto.ID,
		productID:   dto.ProductID,
		productName: dto.ProductName,
		quantity:    dto.Quantity,
		unitPrice:   dto.UnitPrice,
		subtotal:    dto.Subtotal,
	}
}

// ============================================================================
// Items
// ============================================================================

// AddItem is only allowed while the order is pending.
func (o *Order) AddItem(req ItemRequest) error {
	if o.status != StatusPending {
		return NewCannotModifyOrderError(o.id, o.status)
	}
	item, err := newItem(req)
	if err != nil {
		return err
	}

	items := append(append([]OrderItem(nil), o.items...), item)
	total, err := sumItems(items)
	if err != nil {
		return err
	}

	o.items = items
	o.totalAmount = total
	if !o.isNew {
		o.addedItems = append(o.addedItems, item)
	}
	o.updatedAt = time.Now().UTC()
	return nil
}

// RemoveItem is only allowed while the order is pending and keeps at least one item.
func (o *Order) RemoveItem(itemID string) error {
	if o.status != StatusPending {
		return NewCannotModifyOrderError(o.id, o.status)
	}

	idx := -1
	for i, it := range o.items {
		if it.id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewItemNotFoundError(o.id, itemID)
	}
	if len(o.items) == 1 {
		return NewEmptyOrderItemsError()
	}

	removed := o.items[idx]
	items := make([]OrderItem, 0, len(o.items)-1)
	items = append(items, o.items[:idx]...)
	items = append(items, o.items[idx+1:]...)
	total, err := sumItems(items)
	if err != nil {
		return err
	}
	o.items = items
	o.totalAmount = total

	if !o.isNew {
		// added and removed in the same session: never reached the database
		addedHere := false
		for i, added := range o.addedItems {
			if added.id == itemID {
				o.addedItems = append(o.addedItems[:i], o.addedItems[i+1:]...)
				addedHere = true
				break
			}
		}
		if !addedHere {
			o.removedItems = append(o.removedItems, removed)
		}
	}
	o.updatedAt = time.Now().UTC()
	return nil
}

// ============================================================================
// State transitions
// ============================================================================

// ConfirmPayment moves PENDING -> PAID and records PaymentConfirmed followed
// by OrderStatusChanged.
func (o *Order) ConfirmPayment(paymentRef string) error {
	if paymentRef == "" {
		return NewValidationError("payment_ref", "payment reference is required")
	}
	if o.status != StatusPending {
		return NewInvalidOrderStateError(o.status, StatusPaid)
	}

	now := time.Now().UTC()
	from := o.status
	o.status = StatusPaid
	o.paymentRef = paymentRef
	o.updatedAt = now

	o.RecordEvent(PaymentConfirmed{
		OrderID:       o.id,
		CustomerEmail: o.customerEmail,
		PaymentRef:    paymentRef,
		Amount:        o.totalAmount.Amount(),
		Currency:      o.totalAmount.Currency(),
		Timestamp:     now,
	})
	o.RecordEvent(OrderStatusChanged{
		OrderID:   o.id,
		From:      from,
		To:        o.status,
		Timestamp: now,
	})
	return nil
}

// Ship moves PAID -> SHIPPED.
func (o *Order) Ship(trackingNumber string) error {
	if trackingNumber == "" {
		return NewValidationError("tracking_number", "tracking number is required")
	}
	if o.status != StatusPaid {
		return NewInvalidOrderStateError(o.status, StatusShipped)
	}

	now := time.Now().UTC()
	o.status = StatusShipped
	o.trackingNumber = trackingNumber
	o.updatedAt = now
	o.RecordEvent(OrderShipped{
		OrderID:        o.id,
		CustomerEmail:  o.customerEmail,
		TrackingNumber: trackingNumber,
		Timestamp:      now,
	})
	return nil
}

// Deliver moves SHIPPED -> DELIVERED.
func (o *Order) Deliver() error {
	if o.status != StatusShipped {
		return NewInvalidOrderStateError(o.status, StatusDelivered)
	}

	now := time.Now().UTC()
	o.status = StatusDelivered
	o.updatedAt = now
	o.RecordEvent(OrderDelivered{OrderID: o.id, Timestamp: now})
	return nil
}

// Cancel 已送达或已取消的订单不能再取消
func (o *Order) Cancel(reason string) error {
	if o.status == StatusDelivered || o.status == StatusCancelled {
		return NewInvalidOrderStateError(o.status, StatusCancelled)
	}

	now := time.Now().UTC()
	from := o.status
	o.status = StatusCancelled
	o.updatedAt = now
	o.RecordEvent(OrderCancelled{
		OrderID:    o.id,
		FromStatus: from,
		Reason:     reason,
		Timestamp:  now,
	})
	return nil
}

// MarkPersisted is called by the unit of work after a successful commit.
// Inserts keep version 0; every later write bumps it.
func (o *Order) MarkPersisted() {
	if !o.isNew {
		o.version++
	}
	o.isNew = false
	o.addedItems = nil
	o.removedItems = nil
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) ID() string                { return o.id }
func (o *Order) CustomerID() string        { return o.customerID }
func (o *Order) CustomerEmail() string     { return o.customerEmail }
func (o *Order) TotalAmount() shared.Money { return o.totalAmount }
func (o *Order) Status() Status            { return o.status }
func (o *Order) PaymentRef() string        { return o.paymentRef }
func (o *Order) TrackingNumber() string    { return o.trackingNumber }
func (o *Order) Version() int              { return o.version }
func (o *Order) PlacedAt() time.Time       { return o.placedAt }
func (o *Order) UpdatedAt() time.Time      { return o.updatedAt }

// Items returns a copy.
func (o *Order) Items() []OrderItem {
	items := make([]OrderItem, len(o.items))
	copy(items, o.items)
	return items
}

// IsNew reports whether the order has never been persisted.
func (o *Order) IsNew() bool { return o.isNew }

// AddedItems are items to INSERT on the next update.
func (o *Order) AddedItems() []OrderItem {
	items := make([]OrderItem, len(o.addedItems))
	copy(items, o.addedItems)
	return items
}

// RemovedItems are items to DELETE on the next update.
func (o *Order) RemovedItems() []OrderItem {
	items := make([]OrderItem, len(o.removedItems))
	copy(items, o.removedItems)
	return items
}

func (item OrderItem) ID() string              { return item.id }
func (item OrderItem) ProductID() string       { return item.productID }
func (item OrderItem) ProductName() string     { return item.productName }
func (item OrderItem) Quantity() int           { return item.quantity }
func (item OrderItem) UnitPrice() shared.Money { return item.unitPrice }
func (item OrderItem) Subtotal() shared.Money  { return item.subtotal }

var (
	_ shared.AggregateRoot = (*Order)(nil)
	_ shared.EventSource   = (*Order)(nil)
	_ shared.Persistable   = (*Order)(nil)
)
