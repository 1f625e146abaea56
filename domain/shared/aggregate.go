package shared

// AggregateRoot 聚合根接口
// 聚合根是一致性边界的入口，所有修改都必须经过聚合根的领域方法
type AggregateRoot interface {
	// ID 返回聚合根的全局唯一标识，创建后不可变
	ID() string

	// Version 返回加载时的版本号，用于乐观锁
	Version() int
}

// EventSource is implemented by aggregates that buffer domain events.
// Only the outbox interceptor and the unit of work drain it.
type EventSource interface {
	PendingEvents() []DomainEvent
	ClearEvents()
}

// Persistable is implemented by aggregates that need to reset their
// persistence bookkeeping (version, dirty items) after a successful commit.
type Persistable interface {
	MarkPersisted()
}

// EventRecorder holds the ordered buffer of events an aggregate has recorded
// since it was loaded or last committed. Embed it in aggregate roots.
type EventRecorder struct {
	events []DomainEvent
}

// RecordEvent appends to the tail of the buffer.
func (r *EventRecorder) RecordEvent(event DomainEvent) {
	r.events = append(r.events, event)
}

// PendingEvents returns a copy; the buffer is left untouched.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	if len(r.events) == 0 {
		return nil
	}
	events := make([]DomainEvent, len(r.events))
	copy(events, r.events)
	return events
}

func (r *EventRecorder) ClearEvents() {
	r.events = nil
}

// Entity 实体接口：通过标识判断相等性
type Entity interface {
	ID() string
}
