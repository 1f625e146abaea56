package notification

import (
	"context"
	"fmt"

	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/infrastructure/outbox"
)

// PaymentConfirmedHandler 发送付款确认邮件
func PaymentConfirmedHandler(mailer Mailer) outbox.Handler {
	return func(ctx context.Context, d outbox.Delivery) error {
		e, ok := d.Event.(order.PaymentConfirmed)
		if !ok {
			return fmt.Errorf("payment confirmed handler: unexpected event %T", d.Event)
		}
		return mailer.Send(ctx, Email{
			Key:     d.Message.ID,
			To:      e.CustomerEmail,
			Subject: "Payment received for order " + e.OrderID,
			Body:    fmt.Sprintf("We received %s %s (ref %s). Your order is being prepared.", formatAmount(e.Amount), e.Currency, e.PaymentRef),
		})
	}
}

func OrderShippedHandler(mailer Mailer) outbox.Handler {
	return func(ctx context.Context, d outbox.Delivery) error {
		e, ok := d.Event.(order.OrderShipped)
		if !ok {
			return fmt.Errorf("order shipped handler: unexpected event %T", d.Event)
		}
		return mailer.Send(ctx, Email{
			Key:     d.Message.ID,
			To:      e.CustomerEmail,
			Subject: "Order " + e.OrderID + " has shipped",
			Body:    "Tracking number: " + e.TrackingNumber,
		})
	}
}

// formatAmount 最小货币单位转两位小数
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// Guard 包装单个 handler，例如按消息 ID 去重
type Guard func(name string, h outbox.Handler) outbox.Handler

// Registration 描述 worker 的事件订阅
type Registration struct {
	// Types 是需要处理的全部事件类型，通常取 CodecRegistry.Types()
	Types  []shared.EventType
	Mailer Mailer
	// Forward 可选，每个事件在通知之后转发（例如发布到 NATS）
	Forward outbox.Handler
	Guard   Guard
}

// Register 为 Types 中每个类型注册一个 handler。邮件先于转发执行，
// 转发失败时整条消息重试，所以邮件 handler 需要 Guard 去重。
func Register(registry *outbox.HandlerRegistry, r Registration) error {
	guard := r.Guard
	if guard == nil {
		guard = func(_ string, h outbox.Handler) outbox.Handler { return h }
	}

	mail := map[shared.EventType]outbox.Handler{}
	if r.Mailer != nil {
		mail[order.EventPaymentConfirmed] = guard("mail.payment_confirmed", PaymentConfirmedHandler(r.Mailer))
		mail[order.EventOrderShipped] = guard("mail.order_shipped", OrderShippedHandler(r.Mailer))
	}

	for _, t := range r.Types {
		var forward outbox.Handler
		if r.Forward != nil {
			forward = guard("forward", r.Forward)
		}
		h := outbox.Chain(mail[t], forward)
		if err := registry.Register(t, h); err != nil {
			return err
		}
	}
	return nil
}
