package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/domain/order"
	"storefront/infrastructure/outbox"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	value string
	ttl   time.Duration
}

type memStore struct {
	mu     sync.Mutex
	keys   map[string]entry
	err    error
	setErr error
	delErr error
}

func newMemStore() *memStore {
	return &memStore{keys: map[string]entry{}}
}

func (s *memStore) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return redis.NewBoolResult(false, s.err)
	}
	if _, ok := s.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.keys[key] = entry{value: value.(string), ttl: ttl}
	return redis.NewBoolResult(true, nil)
}

func (s *memStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return redis.NewStatusResult("", s.setErr)
	}
	s.keys[key] = entry{value: value.(string), ttl: ttl}
	return redis.NewStatusResult("OK", nil)
}

func (s *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.keys[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(e.value, nil)
}

func (s *memStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return redis.NewIntResult(0, s.delErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := s.keys[k]; ok {
			delete(s.keys, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func delivery(id string) outbox.Delivery {
	return outbox.Delivery{Message: outbox.Message{ID: id, Type: "order.shipped"}}
}

func TestGuardRunsOncePerMessage(t *testing.T) {
	store := newMemStore()
	guard := NewRedisGuard(store, "storefront", 0)

	calls := 0
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		return nil
	})

	require.NoError(t, h(t.Context(), delivery("m-1")))
	require.NoError(t, h(t.Context(), delivery("m-1")))
	require.NoError(t, h(t.Context(), delivery("m-2")))

	assert.Equal(t, 2, calls)
	assert.Equal(t, entry{value: stateDone, ttl: DefaultTTL}, store.keys["storefront:mail:m-1"])
}

func TestGuardKeysAreScopedByHandler(t *testing.T) {
	guard := NewRedisGuard(newMemStore(), "sf", time.Hour)

	counts := map[string]int{}
	counting := func(name string) outbox.Handler {
		return guard.Wrap(name, func(context.Context, outbox.Delivery) error {
			counts[name]++
			return nil
		})
	}

	require.NoError(t, counting("mail")(t.Context(), delivery("m-1")))
	require.NoError(t, counting("forward")(t.Context(), delivery("m-1")))
	require.NoError(t, counting("mail")(t.Context(), delivery("m-1")))

	assert.Equal(t, map[string]int{"mail": 1, "forward": 1}, counts)
}

func TestGuardHoldsLeaseWhileHandlerRuns(t *testing.T) {
	store := newMemStore()
	guard := NewRedisGuard(store, "sf", time.Hour).WithLease(30 * time.Second)

	var during entry
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		during = store.keys["sf:mail:m-1"]
		return nil
	})

	require.NoError(t, h(t.Context(), delivery("m-1")))
	assert.Equal(t, entry{value: stateInFlight, ttl: 30 * time.Second}, during)
	assert.Equal(t, stateDone, store.keys["sf:mail:m-1"].value)
}

func TestGuardReleasesKeyOnFailure(t *testing.T) {
	store := newMemStore()
	guard := NewRedisGuard(store, "sf", time.Hour)

	boom := errors.New("smtp down")
	fail := true
	calls := 0
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		if fail {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, h(t.Context(), delivery("m-1")), boom)
	assert.Empty(t, store.keys)

	fail = false
	require.NoError(t, h(t.Context(), delivery("m-1")))
	assert.Equal(t, 2, calls)
}

func TestGuardReleasesKeyOnPanic(t *testing.T) {
	store := newMemStore()
	guard := NewRedisGuard(store, "sf", time.Hour)

	calls := 0
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		if calls == 1 {
			panic("template missing")
		}
		return nil
	})

	assert.Panics(t, func() { _ = h(t.Context(), delivery("m-1")) })
	assert.Empty(t, store.keys)

	require.NoError(t, h(t.Context(), delivery("m-1")))
	assert.Equal(t, 2, calls)
}

func TestGuardInFlightKeyIsNotSuccess(t *testing.T) {
	store := newMemStore()
	store.delErr = errors.New("connection reset")
	guard := NewRedisGuard(store, "sf", time.Hour)

	calls := 0
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		return errors.New("smtp down")
	})

	// release fails: the in-flight claim stays until its lease expires
	require.Error(t, h(t.Context(), delivery("m-1")))
	require.Equal(t, stateInFlight, store.keys["sf:mail:m-1"].value)

	err := h(t.Context(), delivery("m-1"))
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, 1, calls)
}

func TestGuardUnrecordedSuccessRunsAgain(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("READONLY")
	guard := NewRedisGuard(store, "sf", time.Hour)

	calls := 0
	h := guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, h(t.Context(), delivery("m-1")), store.setErr)
	assert.Empty(t, store.keys)

	store.setErr = nil
	require.NoError(t, h(t.Context(), delivery("m-1")))
	assert.Equal(t, 2, calls)
}

func TestGuardStoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")

	called := false
	err := NewRedisGuard(store, "sf", time.Hour).Wrap("mail", func(context.Context, outbox.Delivery) error {
		called = true
		return nil
	})(t.Context(), delivery("m-1"))

	assert.ErrorIs(t, err, store.err)
	assert.False(t, called)
}

// oneMessageStore is an outbox.Store holding a single message.
type oneMessageStore struct {
	msg outbox.Message
}

func (s *oneMessageStore) FetchPending(context.Context, int) ([]outbox.Message, error) {
	if s.msg.Status != outbox.StatusPending {
		return nil, nil
	}
	return []outbox.Message{s.msg}, nil
}

func (s *oneMessageStore) MarkDelivered(_ context.Context, _ string, at time.Time) error {
	s.msg.Status = outbox.StatusDelivered
	s.msg.DeliveredOn = &at
	return nil
}

func (s *oneMessageStore) MarkFailed(_ context.Context, _ string, cause string, _ int) error {
	s.msg.Attempts++
	s.msg.LastError = cause
	return nil
}

func TestPanickingMailIsRetriedByDispatcher(t *testing.T) {
	codecs, err := outbox.NewDefaultCodecRegistry()
	require.NoError(t, err)
	content, err := codecs.Encode(order.OrderShipped{
		OrderID: "o-1", CustomerEmail: "ann@example.com", TrackingNumber: "TRK-1", Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	store := &oneMessageStore{msg: outbox.Message{
		ID: "m-1", Type: order.EventOrderShipped, AggregateID: "o-1",
		Content: content, OccurredOn: time.Now().UTC(), Status: outbox.StatusPending,
	}}

	guard := NewRedisGuard(newMemStore(), "sf", time.Hour)
	calls, sent := 0, 0
	handlers := outbox.NewHandlerRegistry()
	require.NoError(t, handlers.Register(order.EventOrderShipped, guard.Wrap("mail", func(context.Context, outbox.Delivery) error {
		calls++
		if calls == 1 {
			panic("template missing")
		}
		sent++
		return nil
	})))

	d, err := outbox.NewDispatcher(store, codecs, handlers, outbox.DefaultDispatcherConfig())
	require.NoError(t, err)

	first, err := d.DispatchOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Failed)
	assert.Equal(t, outbox.StatusPending, store.msg.Status)

	second, err := d.DispatchOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Delivered)
	assert.Equal(t, outbox.StatusDelivered, store.msg.Status)
	assert.Equal(t, 1, sent)
}
