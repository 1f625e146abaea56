package catalog

import (
	"strings"

	"storefront/domain/shared"
)

// Repository is the key the product repository is registered under.
var Repository = shared.NewRepositoryKey[*Product]("products")

const (
	FieldID        = "id"
	FieldSKU       = "sku"
	FieldName      = "name"
	FieldPrice     = "price"
	FieldStock     = "stock"
	FieldStatus    = "status"
	FieldCreatedAt = "created_at"
)

func All() shared.Specification[*Product] {
	return shared.NewSpecification[*Product]()
}

func ByID(id string) shared.Specification[*Product] {
	return shared.NewSpecification[*Product](shared.Eq(FieldID, id))
}

func ByIDs(ids ...string) shared.Specification[*Product] {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return shared.NewSpecification[*Product](shared.In(FieldID, values...))
}

func BySKU(sku string) shared.Specification[*Product] {
	return shared.NewSpecification[*Product](shared.Eq(FieldSKU, strings.ToUpper(strings.TrimSpace(sku))))
}

// Active hides discontinued products.
func Active() shared.Specification[*Product] {
	return shared.NewSpecification[*Product](shared.Eq(FieldStatus, string(StatusActive)))
}

// NameContains narrows spec to names containing term. Wildcards in term are
// passed through.
func NameContains(spec shared.Specification[*Product], term string) shared.Specification[*Product] {
	term = strings.TrimSpace(term)
	if term == "" {
		return spec
	}
	return spec.Where(shared.Like(FieldName, "%"+term+"%"))
}

// PriceBetween narrows spec to prices in [min, max] minor units. A bound <= 0 is ignored.
func PriceBetween(spec shared.Specification[*Product], min, max int64) shared.Specification[*Product] {
	if min > 0 {
		spec = spec.Where(shared.Gte(FieldPrice, min))
	}
	if max > 0 {
		spec = spec.Where(shared.Lte(FieldPrice, max))
	}
	return spec
}
