package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/infrastructure/outbox"

	natspkg "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	published []*natspkg.Msg
	flushes   int
	err       error
}

func (c *fakeConn) PublishMsg(m *natspkg.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, m)
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	c.flushes++
	return nil
}

func delivery() outbox.Delivery {
	return outbox.Delivery{Message: outbox.Message{
		ID:          "msg-1",
		Type:        "order.placed",
		AggregateID: "o-1",
		Content:     []byte(`{"order_id":"o-1"}`),
		OccurredOn:  time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}}
}

func TestPublisherHandle(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "storefront.events.")

	require.NoError(t, p.Handle(t.Context(), delivery()))
	require.Len(t, conn.published, 1)

	msg := conn.published[0]
	assert.Equal(t, "storefront.events.order.placed", msg.Subject)
	assert.JSONEq(t, `{"order_id":"o-1"}`, string(msg.Data))
	assert.Equal(t, "msg-1", msg.Header.Get(natspkg.MsgIdHdr))
	assert.Equal(t, "o-1", msg.Header.Get(HeaderAggregateID))
	assert.Equal(t, "2026-04-01T09:00:00Z", msg.Header.Get(HeaderOccurredOn))
	assert.Equal(t, 1, conn.flushes)
}

func TestPublisherWithoutPrefix(t *testing.T) {
	p := NewPublisher(&fakeConn{}, "")
	assert.Equal(t, "order.placed", p.Subject(delivery().Message))
}

func TestPublisherError(t *testing.T) {
	boom := errors.New("no responders")
	conn := &fakeConn{err: boom}
	err := NewPublisher(conn, "x").Handle(t.Context(), delivery())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, conn.flushes)
}
