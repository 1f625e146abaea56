package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/clock"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// Store is the dispatcher side of the outbox table.
type Store interface {
	// FetchPending returns up to limit pending messages, oldest first.
	FetchPending(ctx context.Context, limit int) ([]Message, error)

	// MarkDelivered is a no-op for a message that is already delivered and
	// fails for a message that is no longer pending.
	MarkDelivered(ctx context.Context, id string, at time.Time) error

	// MarkFailed records a failed attempt. With maxAttempts > 0 the message
	// becomes failed once its attempts reach maxAttempts.
	MarkFailed(ctx context.Context, id string, cause string, maxAttempts int) error
}

// PendingCounter is implemented by stores that can report the backlog.
type PendingCounter interface {
	CountPending(ctx context.Context) (int64, error)
}

// Purger is implemented by stores that support retention.
type Purger interface {
	PurgeDelivered(ctx context.Context, before time.Time) (int64, error)
}

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int           // 0 = retry forever
	Retention    time.Duration // 0 = keep delivered messages
	PurgeEvery   time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		PollInterval: time.Second,
		BatchSize:    100,
		MaxAttempts:  10,
		PurgeEvery:   time.Hour,
	}
}

type DispatcherOption func(*Dispatcher)

func WithClock(c clock.Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// Dispatcher polls the outbox and hands each message to its handler.
type Dispatcher struct {
	store     Store
	codecs    *CodecRegistry
	handlers  *HandlerRegistry
	cfg       DispatcherConfig
	clock     clock.Clock
	metrics   *Metrics
	log       *zap.Logger
	lastPurge time.Time
}

// DispatchResult summarises one polling round.
type DispatchResult struct {
	Fetched   int
	Delivered int
	Failed    int
	Skipped   int
}

func NewDispatcher(store Store, codecs *CodecRegistry, handlers *HandlerRegistry, cfg DispatcherConfig, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if codecs == nil {
		return nil, ErrCodecRegistryRequired
	}
	if handlers == nil {
		return nil, ErrHandlerRegistryRequired
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if cfg.MaxAttempts < 0 {
		return nil, fmt.Errorf("max attempts must not be negative")
	}
	if cfg.PurgeEvery <= 0 {
		cfg.PurgeEvery = time.Hour
	}

	d := &Dispatcher{
		store:    store,
		codecs:   codecs,
		handlers: handlers,
		cfg:      cfg,
		clock:    clock.Real{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Named("outbox.dispatcher")
	}
	return d, nil
}

// Run polls until ctx is cancelled. The first round runs immediately.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.log.Info("Outbox dispatcher started",
		zap.Duration("poll_interval", d.cfg.PollInterval),
		zap.Int("batch_size", d.cfg.BatchSize),
		zap.Int("max_attempts", d.cfg.MaxAttempts),
	)

	for {
		d.tick(ctx)

		select {
		case <-ctx.Done():
			d.log.Info("Outbox dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) tick(ctx context.Context) {
	if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
		d.log.Error("Outbox batch processing failed", zap.Error(err))
	}
	d.reportBacklog(ctx)
	d.purge(ctx)
}

// DispatchOnce processes one batch. After a failure, later messages of the
// same aggregate in the batch are skipped so per-aggregate order holds.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (DispatchResult, error) {
	var result DispatchResult

	messages, err := d.store.FetchPending(ctx, d.cfg.BatchSize)
	if err != nil {
		return result, fmt.Errorf("fetch pending: %w", err)
	}
	result.Fetched = len(messages)

	blocked := make(map[string]struct{})
	for _, msg := range messages {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, ok := blocked[msg.AggregateID]; ok {
			result.Skipped++
			continue
		}

		if err := d.deliver(ctx, msg); err != nil {
			result.Failed++
			blocked[msg.AggregateID] = struct{}{}
			d.metrics.observeFailed(msg)
			d.log.Warn("Outbox delivery failed",
				zap.String("message_id", msg.ID),
				zap.String("event_type", msg.Type.String()),
				zap.String("aggregate_id", msg.AggregateID),
				zap.Int("attempt", msg.Attempts+1),
				zap.Error(err),
			)
			if ferr := d.store.MarkFailed(ctx, msg.ID, err.Error(), d.cfg.MaxAttempts); ferr != nil {
				d.log.Error("Failed to mark outbox message as failed",
					zap.String("message_id", msg.ID),
					zap.Error(ferr),
				)
			}
			continue
		}

		now := d.clock.Now()
		if err := d.store.MarkDelivered(ctx, msg.ID, now); err != nil {
			// handled but not marked: it will be redelivered
			blocked[msg.AggregateID] = struct{}{}
			d.log.Error("Failed to mark outbox message as delivered",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		result.Delivered++
		d.metrics.observeDelivered(msg, now.Sub(msg.OccurredOn).Seconds())
	}

	if result.Fetched > 0 {
		d.log.Debug("Outbox batch processed",
			zap.Int("fetched", result.Fetched),
			zap.Int("delivered", result.Delivered),
			zap.Int("failed", result.Failed),
			zap.Int("skipped", result.Skipped),
		)
	}
	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	event, err := d.codecs.Decode(msg.Type, msg.Content)
	if err != nil {
		return err
	}
	return d.handlers.Handle(ctx, Delivery{Message: msg, Event: event})
}

func (d *Dispatcher) reportBacklog(ctx context.Context) {
	counter, ok := d.store.(PendingCounter)
	if !ok || d.metrics == nil {
		return
	}
	n, err := counter.CountPending(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.log.Warn("Failed to count pending outbox messages", zap.Error(err))
		}
		return
	}
	d.metrics.setPending(n)
}

func (d *Dispatcher) purge(ctx context.Context) {
	if d.cfg.Retention <= 0 {
		return
	}
	purger, ok := d.store.(Purger)
	if !ok {
		return
	}
	now := d.clock.Now()
	if !d.lastPurge.IsZero() && now.Sub(d.lastPurge) < d.cfg.PurgeEvery {
		return
	}
	d.lastPurge = now

	n, err := purger.PurgeDelivered(ctx, now.Add(-d.cfg.Retention))
	if err != nil {
		d.log.Warn("Outbox retention purge failed", zap.Error(err))
		return
	}
	d.metrics.addPurged(n)
	if n > 0 {
		d.log.Info("Purged delivered outbox messages", zap.Int64("count", n))
	}
}
