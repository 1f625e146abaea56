package po

import (
	"time"

	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
)

// OutboxMessagePO Outbox message persistence object
// Rows are written in the same transaction as the aggregates that recorded
// the events and read back by the dispatcher in (occurred_on, id) order.
type OutboxMessagePO struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Type        string     `gorm:"size:100;index;not null"`
	AggregateID string     `gorm:"size:64;index;not null"`
	Content     string     `gorm:"type:text;not null"`
	OccurredOn  time.Time  `gorm:"index:idx_outbox_pending,priority:2;not null"`
	Status      string     `gorm:"size:20;index:idx_outbox_pending,priority:1;not null"`
	DeliveredOn *time.Time `gorm:"index"`
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:text"`
}

// TableName Specify table name
func (OutboxMessagePO) TableName() string {
	return "outbox_messages"
}

func FromOutboxMessage(m outbox.Message) OutboxMessagePO {
	status := m.Status
	if status == "" {
		status = outbox.StatusPending
	}
	return OutboxMessagePO{
		ID:          m.ID,
		Type:        string(m.Type),
		AggregateID: m.AggregateID,
		Content:     string(m.Content),
		OccurredOn:  m.OccurredOn,
		Status:      string(status),
		DeliveredOn: m.DeliveredOn,
		Attempts:    m.Attempts,
		LastError:   m.LastError,
	}
}

func (po *OutboxMessagePO) ToMessage() outbox.Message {
	return outbox.Message{
		ID:          po.ID,
		Type:        shared.EventType(po.Type),
		AggregateID: po.AggregateID,
		Content:     []byte(po.Content),
		OccurredOn:  po.OccurredOn,
		Status:      outbox.Status(po.Status),
		DeliveredOn: po.DeliveredOn,
		Attempts:    po.Attempts,
		LastError:   po.LastError,
	}
}
