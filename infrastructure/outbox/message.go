package outbox

import (
	"time"

	"storefront/domain/shared"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	// StatusFailed is terminal: the message hit the attempt cap and is no
	// longer fetched.
	StatusFailed Status = "failed"
)

// Message is one outbox row.
type Message struct {
	ID          string
	Type        shared.EventType
	AggregateID string
	Content     []byte
	OccurredOn  time.Time
	Status      Status
	DeliveredOn *time.Time
	Attempts    int
	LastError   string
}

func (m Message) IsDelivered() bool { return m.Status == StatusDelivered }
