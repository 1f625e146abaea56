// Package notification 把 outbox 事件转换为客户通知
package notification

import (
	"context"

	"go.uber.org/zap"
)

// Email 一封待发送邮件。Key 用于下游去重，取 outbox 消息 ID
type Email struct {
	Key     string
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LoggingMailer 只记录日志，不真正发送
type LoggingMailer struct {
	from string
	log  *zap.Logger
}

func NewLoggingMailer(from string, log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{from: from, log: log.With(zap.String("component", "mailer"))}
}

func (m *LoggingMailer) Send(_ context.Context, email Email) error {
	m.log.Info("Email sent",
		zap.String("key", email.Key),
		zap.String("from", m.from),
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}
