package gormstore

import (
	"context"
	"fmt"

	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence"
	"storefront/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type opKind int

const (
	opInsert opKind = iota + 1
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	}
	return "unknown"
}

type stagedOp struct {
	kind      opKind
	key       string
	aggregate shared.AggregateRoot
	apply     func(tx *gorm.DB) error
}

// UnitOfWork implements shared.UnitOfWork with GORM.
// It is scoped to one request and must not be shared between goroutines.
type UnitOfWork struct {
	db          *gorm.DB
	registry    *RepositoryRegistry
	interceptor *outbox.Interceptor
	outbox      *OutboxRepository

	repositories map[string]any
	ops          []stagedOp
}

func NewUnitOfWork(db *gorm.DB, registry *RepositoryRegistry, interceptor *outbox.Interceptor) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		registry:     registry,
		interceptor:  interceptor,
		outbox:       NewOutboxRepository(db),
		repositories: make(map[string]any),
	}
}

// Repository returns the same instance for every call with the same name.
func (u *UnitOfWork) Repository(name string) (any, error) {
	if repo, ok := u.repositories[name]; ok {
		return repo, nil
	}
	factory, ok := u.registry.factories[name]
	if !ok {
		return nil, fmt.Errorf("repository %q is not registered", name)
	}
	repo := factory(u)
	u.repositories[name] = repo
	return repo, nil
}

// stage 合并同一聚合的重复操作:
//   - Add 后再 Add、Update 后再 Update、Add 后 Update 都忽略
//   - Add 后 Delete 两者都丢弃（从未写入）
//   - Update 后 Delete 由 Delete 取代
func (u *UnitOfWork) stage(op stagedOp) {
	for i, prev := range u.ops {
		if prev.key != op.key {
			continue
		}
		switch {
		case op.kind == opDelete && prev.kind == opInsert:
			u.ops = append(u.ops[:i], u.ops[i+1:]...)
		case op.kind == opDelete && prev.kind == opUpdate:
			u.ops[i] = op
		}
		return
	}
	u.ops = append(u.ops, op)
}

// Commit writes every staged mutation and the outbox messages for the events
// the staged aggregates recorded, in one transaction.
// On success the event buffers are cleared and aggregates marked persisted.
// On failure nothing is written and the buffers and staged operations are
// left as they were.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(u.ops) == 0 {
		return nil
	}

	sources := make([]shared.EventSource, 0, len(u.ops))
	for _, op := range u.ops {
		if src, ok := op.aggregate.(shared.EventSource); ok {
			sources = append(sources, src)
		}
	}

	messages, err := u.interceptor.Intercept(sources)
	if err != nil {
		return fmt.Errorf("collect outbox messages: %w", err)
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range u.ops {
			if err := op.apply(tx); err != nil {
				return err
			}
		}
		return u.outbox.Insert(persistence.ContextWithTx(ctx, tx), messages)
	})
	if err != nil {
		logger.Ctx(ctx).Debug("Unit of work rolled back",
			zap.Int("operations", len(u.ops)),
			zap.Error(err),
		)
		return err
	}

	for _, src := range sources {
		src.ClearEvents()
	}
	for _, op := range u.ops {
		if p, ok := op.aggregate.(shared.Persistable); ok && op.kind != opDelete {
			p.MarkPersisted()
		}
	}

	logger.Ctx(ctx).Debug("Unit of work committed",
		zap.Int("operations", len(u.ops)),
		zap.Int("outbox_messages", len(messages)),
	)
	u.ops = nil
	return nil
}

// Compile-time check that UnitOfWork implements shared.UnitOfWork
var _ shared.UnitOfWork = (*UnitOfWork)(nil)
