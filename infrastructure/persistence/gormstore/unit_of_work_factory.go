package gormstore

import (
	"context"

	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

type UnitOfWorkFactory struct {
	db          *gorm.DB
	registry    *RepositoryRegistry
	interceptor *outbox.Interceptor
	retryConfig retry.Config
}

func NewUnitOfWorkFactory(db *gorm.DB, registry *RepositoryRegistry, interceptor *outbox.Interceptor, retryConfig retry.Config) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db:          db,
		registry:    registry,
		interceptor: interceptor,
		retryConfig: retryConfig,
	}
}

func (f *UnitOfWorkFactory) New() shared.UnitOfWork {
	return NewUnitOfWork(f.db, f.registry, f.interceptor)
}

// Execute runs fn and commits on a fresh unit of work per attempt. Deadlocks,
// lock timeouts and version conflicts are retried per retryConfig.
func (f *UnitOfWorkFactory) Execute(ctx context.Context, fn func(ctx context.Context, uow shared.UnitOfWork) error) error {
	return retry.ExecuteWithRetry(ctx, f.retryConfig, func(ctx context.Context) error {
		uow := f.New()
		if err := fn(ctx, uow); err != nil {
			return err
		}
		return uow.Commit(ctx)
	})
}

var _ shared.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
