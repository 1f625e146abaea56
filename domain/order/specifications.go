package order

import (
	"time"

	"storefront/domain/shared"
)

// Queryable fields and relations of an Order.
const (
	FieldID         = "id"
	FieldCustomerID = "customer_id"
	FieldStatus     = "status"
	FieldTotal      = "total_amount"
	FieldPlacedAt   = "placed_at"

	RelationItems = "items"
)

// All matches every order.
func All() shared.Specification[*Order] {
	return shared.NewSpecification[*Order]()
}

func ByID(id string) shared.Specification[*Order] {
	return shared.NewSpecification[*Order](shared.Eq(FieldID, id))
}

func ByCustomer(customerID string) shared.Specification[*Order] {
	return shared.NewSpecification[*Order](shared.Eq(FieldCustomerID, customerID))
}

func ByStatus(status Status) shared.Specification[*Order] {
	return shared.NewSpecification[*Order](shared.Eq(FieldStatus, string(status)))
}

// PlacedBetween narrows spec to [from, to). A zero bound is ignored.
func PlacedBetween(spec shared.Specification[*Order], from, to time.Time) shared.Specification[*Order] {
	if !from.IsZero() {
		spec = spec.Where(shared.Gte(FieldPlacedAt, from))
	}
	if !to.IsZero() {
		spec = spec.Where(shared.Lt(FieldPlacedAt, to))
	}
	return spec
}

// WithItems eagerly loads the order lines.
func WithItems(spec shared.Specification[*Order]) shared.Specification[*Order] {
	return spec.Include(RelationItems)
}

func NewestFirst(spec shared.Specification[*Order]) shared.Specification[*Order] {
	return spec.SortBy(FieldPlacedAt, shared.Desc)
}
