package gormstore

import (
	"fmt"
	"sort"

	"storefront/domain/catalog"
	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/gormstore/po"
	"storefront/infrastructure/persistence/specification"
)

type repositoryFactory func(u *UnitOfWork) any

// RepositoryRegistry is populated once at startup and shared by every unit of
// work. It is read-only afterwards.
type RepositoryRegistry struct {
	factories map[string]repositoryFactory
}

func NewRepositoryRegistry() *RepositoryRegistry {
	return &RepositoryRegistry{factories: make(map[string]repositoryFactory)}
}

// Register binds key to a GORM repository built on mapper.
func Register[T shared.AggregateRoot, P any](r *RepositoryRegistry, key shared.RepositoryKey[T], mapper Mapper[T, P]) error {
	name := key.Name()
	if name == "" {
		return fmt.Errorf("repository name is required")
	}
	if mapper == nil {
		return fmt.Errorf("repository %q: mapper is required", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("repository %q already registered", name)
	}

	translator := specification.NewTranslator(specification.Schema{
		Columns:   mapper.Columns(),
		Relations: mapper.Relations(),
	})
	r.factories[name] = func(u *UnitOfWork) any {
		return newRepository(u, name, mapper, translator)
	}
	return nil
}

// Names returns the registered repository names, sorted.
func (r *RepositoryRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry registers the storefront aggregates.
func NewDefaultRegistry() (*RepositoryRegistry, error) {
	r := NewRepositoryRegistry()
	if err := Register[*order.Order, po.OrderPO](r, order.Repository, OrderMapper{}); err != nil {
		return nil, err
	}
	if err := Register[*catalog.Product, po.ProductPO](r, catalog.Repository, ProductMapper{}); err != nil {
		return nil, err
	}
	return r, nil
}
