package gormstore

import (
	"context"
	"fmt"

	"storefront/domain/shared"
	"storefront/infrastructure/persistence"
	"storefront/infrastructure/persistence/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the GORM implementation of shared.Repository[T] for rows of
// type P. Reads hit the database immediately; Add/Update/Delete are staged on
// the owning UnitOfWork and written at Commit.
type Repository[T shared.AggregateRoot, P any] struct {
	uow        *UnitOfWork
	name       string
	mapper     Mapper[T, P]
	children   ChildWriter[T]
	translator *specification.Translator
}

func newRepository[T shared.AggregateRoot, P any](u *UnitOfWork, name string, mapper Mapper[T, P], translator *specification.Translator) *Repository[T, P] {
	r := &Repository[T, P]{
		uow:        u,
		name:       name,
		mapper:     mapper,
		translator: translator,
	}
	if cw, ok := mapper.(ChildWriter[T]); ok {
		r.children = cw
	}
	return r
}

func (r *Repository[T, P]) db(ctx context.Context) *gorm.DB {
	return persistence.DB(ctx, r.uow.db).Model(new(P))
}

func (r *Repository[T, P]) query(ctx context.Context, spec shared.Specification[T]) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.translator.Apply(r.db(ctx), spec.Query())
}

// FirstOrDefault returns (zero, false, nil) when nothing matches.
func (r *Repository[T, P]) FirstOrDefault(ctx context.Context, spec shared.Specification[T]) (T, bool, error) {
	var zero T

	db, err := r.query(ctx, spec)
	if err != nil {
		return zero, false, err
	}

	var records []P
	if err := db.Limit(1).Find(&records).Error; err != nil {
		return zero, false, fmt.Errorf("query %s: %w", r.name, err)
	}
	if len(records) == 0 {
		return zero, false, nil
	}

	agg, err := r.mapper.ToDomain(&records[0])
	if err != nil {
		return zero, false, err
	}
	return agg, true, nil
}

func (r *Repository[T, P]) List(ctx context.Context, spec shared.Specification[T]) ([]T, error) {
	db, err := r.query(ctx, spec)
	if err != nil {
		return nil, err
	}
	return r.find(db)
}

func (r *Repository[T, P]) find(db *gorm.DB) ([]T, error) {
	var records []P
	if err := db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", r.name, err)
	}

	result := make([]T, 0, len(records))
	for i := range records {
		agg, err := r.mapper.ToDomain(&records[i])
		if err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	return result, nil
}

// Count filters by the criteria of spec only, but still rejects unknown
// includes and sort fields.
func (r *Repository[T, P]) Count(ctx context.Context, spec shared.Specification[T]) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q := spec.Query()
	if err := r.translator.Validate(q); err != nil {
		return 0, err
	}
	db, err := r.translator.Filter(r.db(ctx), q)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.name, err)
	}
	return total, nil
}

// ListWithTotalCount counts with the filters of spec, then loads its page.
// With CountOnly set, or when nothing matches, the page query is skipped.
func (r *Repository[T, P]) ListWithTotalCount(ctx context.Context, spec shared.Specification[T]) ([]T, int64, error) {
	q := spec.Query()
	if err := r.translator.Validate(q); err != nil {
		return nil, 0, err
	}

	total, err := r.Count(ctx, spec)
	if err != nil {
		return nil, 0, err
	}
	if q.CountOnly || total == 0 {
		return []T{}, total, nil
	}

	items, err := r.List(ctx, spec)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository[T, P]) Add(aggregate T) {
	r.uow.stage(stagedOp{
		kind:      opInsert,
		key:       r.identity(aggregate),
		aggregate: aggregate,
		apply:     func(tx *gorm.DB) error { return r.insert(tx, aggregate) },
	})
}

func (r *Repository[T, P]) Update(aggregate T) {
	r.uow.stage(stagedOp{
		kind:      opUpdate,
		key:       r.identity(aggregate),
		aggregate: aggregate,
		apply:     func(tx *gorm.DB) error { return r.update(tx, aggregate) },
	})
}

func (r *Repository[T, P]) Delete(aggregate T) {
	r.uow.stage(stagedOp{
		kind:      opDelete,
		key:       r.identity(aggregate),
		aggregate: aggregate,
		apply:     func(tx *gorm.DB) error { return r.delete(tx, aggregate) },
	})
}

func (r *Repository[T, P]) identity(aggregate T) string {
	return r.name + "/" + aggregate.ID()
}

func (r *Repository[T, P]) insert(tx *gorm.DB, aggregate T) error {
	rec := r.mapper.ToRecord(aggregate)
	r.mapper.SetVersion(rec, aggregate.Version())

	if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("insert %s %s: %w", r.name, aggregate.ID(), err)
	}
	if r.children != nil {
		if err := r.children.InsertChildren(tx, aggregate); err != nil {
			return fmt.Errorf("insert %s %s children: %w", r.name, aggregate.ID(), err)
		}
	}
	return nil
}

// update 严格乐观锁：WHERE version = 加载时版本，成功后版本 +1
func (r *Repository[T, P]) update(tx *gorm.DB, aggregate T) error {
	expected := aggregate.Version()
	rec := r.mapper.ToRecord(aggregate)
	r.mapper.SetVersion(rec, expected+1)

	result := tx.Model(rec).
		Where("version = ?", expected).
		Omit(clause.Associations).
		Select("*").
		Updates(rec)
	if result.Error != nil {
		return fmt.Errorf("update %s %s: %w", r.name, aggregate.ID(), result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(tx, aggregate)
	}

	if r.children != nil {
		if err := r.children.SyncChildren(tx, aggregate); err != nil {
			return fmt.Errorf("update %s %s children: %w", r.name, aggregate.ID(), err)
		}
	}
	return nil
}

func (r *Repository[T, P]) delete(tx *gorm.DB, aggregate T) error {
	if r.children != nil {
		if err := r.children.DeleteChildren(tx, aggregate); err != nil {
			return fmt.Errorf("delete %s %s children: %w", r.name, aggregate.ID(), err)
		}
	}

	result := tx.Where("id = ? AND version = ?", aggregate.ID(), aggregate.Version()).Delete(new(P))
	if result.Error != nil {
		return fmt.Errorf("delete %s %s: %w", r.name, aggregate.ID(), result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(tx, aggregate)
	}
	return nil
}

func (r *Repository[T, P]) missingOrConflict(tx *gorm.DB, aggregate T) error {
	var count int64
	if err := tx.Model(new(P)).Where("id = ?", aggregate.ID()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError(r.name, aggregate.ID())
	}
	return shared.NewConcurrentModificationError(r.name, aggregate.ID())
}

var _ shared.Repository[shared.AggregateRoot] = (*Repository[shared.AggregateRoot, struct{}])(nil)
