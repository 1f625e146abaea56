package shared

import (
	"context"
	"fmt"
)

// Repository executes specifications for one aggregate type and stages
// mutations on the owning UnitOfWork. Nothing is written before Commit.
type Repository[T AggregateRoot] interface {
	// FirstOrDefault returns ok=false, not an error, when nothing matches.
	FirstOrDefault(ctx context.Context, spec Specification[T]) (T, bool, error)

	List(ctx context.Context, spec Specification[T]) ([]T, error)

	Count(ctx context.Context, spec Specification[T]) (int64, error)

	// ListWithTotalCount returns the page selected by spec and the number of
	// rows matching spec's filters without its paging window.
	ListWithTotalCount(ctx context.Context, spec Specification[T]) ([]T, int64, error)

	Add(aggregate T)
	Update(aggregate T)
	Delete(aggregate T)
}

// UnitOfWork is scoped to one logical transaction (usually one request).
type UnitOfWork interface {
	// Repository returns the memoized repository registered under name.
	// Use RepositoryFor for the typed form.
	Repository(name string) (any, error)

	// Commit drains the events of every staged aggregate into outbox
	// messages and writes them together with the staged mutations in one
	// transaction.
	Commit(ctx context.Context) error
}

// UnitOfWorkFactory 创建请求级的工作单元
type UnitOfWorkFactory interface {
	New() UnitOfWork

	// Execute runs fn against a fresh UnitOfWork and commits it.
	Execute(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

// RepositoryKey names the repository serving aggregate type T.
type RepositoryKey[T AggregateRoot] struct {
	name string
}

func NewRepositoryKey[T AggregateRoot](name string) RepositoryKey[T] {
	return RepositoryKey[T]{name: name}
}

func (k RepositoryKey[T]) Name() string { return k.name }

// RepositoryFor resolves the typed repository for key from uow.
func RepositoryFor[T AggregateRoot](uow UnitOfWork, key RepositoryKey[T]) (Repository[T], error) {
	r, err := uow.Repository(key.name)
	if err != nil {
		return nil, err
	}
	repo, ok := r.(Repository[T])
	if !ok {
		return nil, fmt.Errorf("repository %q is registered for a different aggregate type", key.name)
	}
	return repo, nil
}
