// Package nats 把 outbox 消息转发到 NATS 主题 <prefix>.<event type>
package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/config"
	"storefront/infrastructure/outbox"

	natspkg "github.com/nats-io/nats.go"
)

const (
	HeaderAggregateID = "Aggregate-Id"
	HeaderOccurredOn  = "Occurred-On"
	HeaderEventType   = "Event-Type"
)

// Conn 是 *nats.Conn 中发布用到的部分
type Conn interface {
	PublishMsg(m *natspkg.Msg) error
	FlushWithContext(ctx context.Context) error
}

type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, subjectPrefix string) *Publisher {
	return &Publisher{conn: conn, prefix: strings.TrimSuffix(subjectPrefix, ".")}
}

// Connect 建立连接，断线后无限重连
func Connect(cfg config.NATSConfig) (*natspkg.Conn, error) {
	nc, err := natspkg.Connect(cfg.URL,
		natspkg.Name("storefront-outbox"),
		natspkg.MaxReconnects(-1),
		natspkg.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	return nc, nil
}

func (p *Publisher) Subject(msg outbox.Message) string {
	if p.prefix == "" {
		return string(msg.Type)
	}
	return p.prefix + "." + string(msg.Type)
}

// Handle 发布原始消息体。Nats-Msg-Id 取 outbox ID，JetStream 据此去重
func (p *Publisher) Handle(ctx context.Context, d outbox.Delivery) error {
	msg := natspkg.NewMsg(p.Subject(d.Message))
	msg.Data = d.Message.Content
	msg.Header.Set(natspkg.MsgIdHdr, d.Message.ID)
	msg.Header.Set(HeaderEventType, string(d.Message.Type))
	msg.Header.Set(HeaderAggregateID, d.Message.AggregateID)
	msg.Header.Set(HeaderOccurredOn, d.Message.OccurredOn.UTC().Format(time.RFC3339Nano))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	// 确认服务端已收到，再让 dispatcher 标记为已投递
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", msg.Subject, err)
	}
	return nil
}
