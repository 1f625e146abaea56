package outbox

import (
	"fmt"

	"storefront/domain/shared"
	"storefront/pkg/clock"

	"github.com/google/uuid"
)

// Interceptor turns the buffered events of the aggregates staged in a unit of
// work into outbox messages. It runs once per commit, before the physical
// write, and never touches the buffers: the unit of work clears them after
// the transaction commits.
type Interceptor struct {
	codecs *CodecRegistry
	clock  clock.Clock
}

func NewInterceptor(codecs *CodecRegistry, clk clock.Clock) *Interceptor {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Interceptor{codecs: codecs, clock: clk}
}

// Intercept returns one pending message per buffered event, aggregate by
// aggregate in the given order and event by event in recording order.
// Any invalid or unencodable event fails the whole call.
func (i *Interceptor) Intercept(sources []shared.EventSource) ([]Message, error) {
	if i.codecs == nil {
		return nil, ErrCodecRegistryRequired
	}

	now := i.clock.Now()
	var messages []Message
	for _, src := range sources {
		for _, event := range src.PendingEvents() {
			if err := shared.ValidateEvent(event); err != nil {
				return nil, fmt.Errorf("invalid domain event: %w", err)
			}
			content, err := i.codecs.Encode(event)
			if err != nil {
				return nil, fmt.Errorf("encode %s for %s: %w", event.EventType(), event.AggregateID(), err)
			}
			id, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("generate outbox id: %w", err)
			}
			messages = append(messages, Message{
				ID:          id.String(),
				Type:        event.EventType(),
				AggregateID: event.AggregateID(),
				Content:     content,
				OccurredOn:  now,
				Status:      StatusPending,
			})
		}
	}
	return messages, nil
}
