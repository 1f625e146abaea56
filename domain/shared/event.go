package shared

import (
	"fmt"
	"time"
)

// EventType is the stable tag an event is stored and routed under.
type EventType string

func (t EventType) String() string { return string(t) }

// DomainEvent is an immutable fact recorded by an aggregate.
type DomainEvent interface {
	EventType() EventType
	AggregateID() string
	OccurredOn() time.Time
}

func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventType() == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	if event.AggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}
