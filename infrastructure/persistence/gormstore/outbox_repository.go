package gormstore

import (
	"context"
	"fmt"
	"time"

	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence"
	"storefront/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
)

// OutboxRepository MySQL/PostgreSQL/SQLite implementation of the outbox table.
// Writes happen inside UnitOfWork.Commit; the dispatcher uses the rest.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) getDB(ctx context.Context) *gorm.DB {
	return persistence.DB(ctx, r.db)
}

// insert saves messages with the caller's transaction.
func (r *OutboxRepository) insert(tx *gorm.DB, messages []outbox.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]po.OutboxMessagePO, len(messages))
	for i, m := range messages {
		rows[i] = po.FromOutboxMessage(m)
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save outbox messages: %w", err)
	}
	return nil
}

// Insert saves messages outside a unit of work, joining a transaction bound
// to ctx when there is one.
func (r *OutboxRepository) Insert(ctx context.Context, messages []outbox.Message) error {
	return r.insert(r.getDB(ctx), messages)
}

// FetchPending returns pending messages oldest first, ties broken by id.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit < 1 {
		return nil, shared.NewValidationError("outbox message", "limit", fmt.Sprintf("limit must be at least 1, got %d", limit))
	}

	var rows []po.OutboxMessagePO
	err := r.getDB(ctx).
		Where("status = ?", string(outbox.StatusPending)).
		Order("occurred_on ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	messages := make([]outbox.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].ToMessage()
	}
	return messages, nil
}

// MarkDelivered only moves pending messages. It is idempotent for a delivered
// message, which keeps its first timestamp; a failed message is a conflict.
func (r *OutboxRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	db := r.getDB(ctx)
	result := db.Model(&po.OutboxMessagePO{}).
		Where("id = ? AND status = ?", id, string(outbox.StatusPending)).
		Updates(map[string]any{
			"status":       string(outbox.StatusDelivered),
			"delivered_on": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var row po.OutboxMessagePO
	found := db.Select("status").Where("id = ?", id).Limit(1).Find(&row)
	if found.Error != nil {
		return found.Error
	}
	switch {
	case found.RowsAffected == 0:
		return shared.NewNotFoundError("outbox message", id)
	case row.Status == string(outbox.StatusDelivered):
		return nil
	default:
		// failed 是终态
		return shared.NewConflictError("outbox message", fmt.Sprintf("message %s is %s, not pending", id, row.Status))
	}
}

// MarkFailed records a failed attempt. With maxAttempts > 0 the message is
// moved to failed once attempts reach it.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id, cause string, maxAttempts int) error {
	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var row po.OutboxMessagePO
		result := tx.Where("id = ?", id).Limit(1).Find(&row)
		if result.Error != nil {
			return fmt.Errorf("failed to find message: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("outbox message", id)
		}
		if row.Status == string(outbox.StatusDelivered) {
			return nil
		}

		attempts := row.Attempts + 1
		status := outbox.StatusPending
		if maxAttempts > 0 && attempts >= maxAttempts {
			status = outbox.StatusFailed
		}

		return tx.Model(&po.OutboxMessagePO{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":     string(status),
				"attempts":   attempts,
				"last_error": cause,
			}).Error
	})
}

// PurgeDelivered deletes messages delivered before the cut-off.
func (r *OutboxRepository) PurgeDelivered(ctx context.Context, before time.Time) (int64, error) {
	result := r.getDB(ctx).
		Where("status = ? AND delivered_on < ?", string(outbox.StatusDelivered), before).
		Delete(&po.OutboxMessagePO{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge delivered messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *OutboxRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&po.OutboxMessagePO{}).
		Where("status = ?", string(outbox.StatusPending)).
		Count(&count).Error
	return count, err
}

// Get returns one message, or a not-found error.
func (r *OutboxRepository) Get(ctx context.Context, id string) (outbox.Message, error) {
	var row po.OutboxMessagePO
	result := r.getDB(ctx).Where("id = ?", id).Limit(1).Find(&row)
	if result.Error != nil {
		return outbox.Message{}, result.Error
	}
	if result.RowsAffected == 0 {
		return outbox.Message{}, shared.NewNotFoundError("outbox message", id)
	}
	return row.ToMessage(), nil
}

var (
	_ outbox.Store          = (*OutboxRepository)(nil)
	_ outbox.PendingCounter = (*OutboxRepository)(nil)
	_ outbox.Purger         = (*OutboxRepository)(nil)
)
