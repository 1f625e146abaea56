package outbox

import (
	"encoding/json"
	"fmt"

	"storefront/domain/shared"
)

// Codec serializes one event type.
type Codec interface {
	Type() shared.EventType
	Encode(event shared.DomainEvent) ([]byte, error)
	Decode(content []byte) (shared.DomainEvent, error)
}

// JSONCodec is bound to the concrete event type E at compile time. E must be
// a value type whose EventType method does not depend on its fields.
type JSONCodec[E shared.DomainEvent] struct {
	tag shared.EventType
}

func NewJSONCodec[E shared.DomainEvent]() JSONCodec[E] {
	var zero E
	return JSONCodec[E]{tag: zero.EventType()}
}

func (c JSONCodec[E]) Type() shared.EventType { return c.tag }

func (c JSONCodec[E]) Encode(event shared.DomainEvent) ([]byte, error) {
	e, ok := event.(E)
	if !ok {
		return nil, fmt.Errorf("codec %s cannot encode %T", c.tag, event)
	}
	return json.Marshal(e)
}

func (c JSONCodec[E]) Decode(content []byte) (shared.DomainEvent, error) {
	var e E
	if err := json.Unmarshal(content, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.tag, err)
	}
	return e, nil
}

// CodecRegistry maps event tags to codecs. It is immutable after construction.
type CodecRegistry struct {
	codecs map[shared.EventType]Codec
	order  []shared.EventType
}

func NewCodecRegistry(codecs ...Codec) (*CodecRegistry, error) {
	r := &CodecRegistry{codecs: make(map[shared.EventType]Codec, len(codecs))}
	for _, c := range codecs {
		if c == nil || c.Type() == "" {
			return nil, ErrEventTypeRequired
		}
		if _, exists := r.codecs[c.Type()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrCodecAlreadyRegistered, c.Type())
		}
		r.codecs[c.Type()] = c
		r.order = append(r.order, c.Type())
	}
	return r, nil
}

func (r *CodecRegistry) Encode(event shared.DomainEvent) ([]byte, error) {
	c, ok := r.codecs[event.EventType()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, event.EventType())
	}
	return c.Encode(event)
}

func (r *CodecRegistry) Decode(tag shared.EventType, content []byte) (shared.DomainEvent, error) {
	c, ok := r.codecs[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, tag)
	}
	return c.Decode(content)
}

// Types returns the registered tags in registration order.
func (r *CodecRegistry) Types() []shared.EventType {
	out := make([]shared.EventType, len(r.order))
	copy(out, r.order)
	return out
}
