package outbox

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/domain/shared"
)

// Delivery is what a handler receives: the stored message and its decoded event.
type Delivery struct {
	Message Message
	Event   shared.DomainEvent
}

// Handler must be idempotent: a message can be delivered more than once.
type Handler func(ctx context.Context, d Delivery) error

// Chain runs handlers in order and stops at the first error.
func Chain(handlers ...Handler) Handler {
	return func(ctx context.Context, d Delivery) error {
		for _, h := range handlers {
			if h == nil {
				continue
			}
			if err := h(ctx, d); err != nil {
				return err
			}
		}
		return nil
	}
}

// HandlerRegistry stores one handler per event type.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[shared.EventType]Handler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: map[shared.EventType]Handler{}}
}

func (r *HandlerRegistry) Register(eventType shared.EventType, handler Handler) error {
	if r == nil {
		return ErrHandlerRegistryRequired
	}
	normalized := shared.EventType(strings.TrimSpace(string(eventType)))
	if normalized == "" {
		return ErrEventTypeRequired
	}
	if handler == nil {
		return ErrEventHandlerRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[normalized]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, normalized)
	}
	r.handlers[normalized] = handler
	return nil
}

func (r *HandlerRegistry) Has(eventType shared.EventType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[eventType]
	return ok
}

func (r *HandlerRegistry) Handle(ctx context.Context, d Delivery) error {
	if r == nil {
		return ErrHandlerRegistryRequired
	}
	r.mu.RLock()
	handler, ok := r.handlers[d.Message.Type]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrHandlerNotRegistered, d.Message.Type)
	}
	return handler(ctx, d)
}
