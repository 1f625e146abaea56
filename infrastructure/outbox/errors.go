package outbox

import "errors"

var (
	ErrUnknownEventType         = errors.New("unknown event type")
	ErrCodecAlreadyRegistered   = errors.New("event codec already registered")
	ErrEventTypeRequired        = errors.New("event type is required")
	ErrEventHandlerRequired     = errors.New("event handler is required")
	ErrHandlerAlreadyRegistered = errors.New("event handler already registered")
	ErrHandlerNotRegistered     = errors.New("event handler is not registered")
	ErrStoreRequired            = errors.New("outbox store is required")
	ErrCodecRegistryRequired    = errors.New("codec registry is required")
	ErrHandlerRegistryRequired  = errors.New("handler registry is required")
)
