// Package idempotency 保证 outbox handler 对同一条消息只生效一次。
// dispatcher 是至少一次投递，标记失败后会重放已执行过的 handler。
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/config"
	"storefront/infrastructure/outbox"
	"storefront/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 72 * time.Hour
	// DefaultLease 处理中占位的存活时间；worker 崩溃后占位自动过期
	DefaultLease = 2 * time.Minute
)

const (
	stateInFlight = "in_flight"
	stateDone     = "done"
)

// ErrInFlight 另一次投递正在处理同一条消息（或崩溃留下的占位尚未过期）
var ErrInFlight = errors.New("idempotency: delivery in flight")

// Store 是 redis.Cmdable 中用到的部分
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisGuard struct {
	store  Store
	prefix string
	ttl    time.Duration
	lease  time.Duration
}

func NewRedisGuard(store Store, prefix string, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{store: store, prefix: prefix, ttl: ttl, lease: DefaultLease}
}

// WithLease 调整处理中占位的存活时间
func (g *RedisGuard) WithLease(lease time.Duration) *RedisGuard {
	if lease > 0 {
		g.lease = lease
	}
	return g
}

// NewClient 创建客户端并 Ping 一次
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (g *RedisGuard) key(name, messageID string) string {
	return g.prefix + ":" + name + ":" + messageID
}

// Wrap 用 SETNX 写入带租约的 in_flight 占位，handler 成功后才改写为 done。
// done 跳过；in_flight 返回 ErrInFlight，消息保持 pending 等下一轮。
// handler 返回错误或 panic 时删除占位；删除失败则等租约过期。
func (g *RedisGuard) Wrap(name string, h outbox.Handler) outbox.Handler {
	return func(ctx context.Context, d outbox.Delivery) error {
		key := g.key(name, d.Message.ID)

		claimed, err := g.store.SetNX(ctx, key, stateInFlight, g.lease).Result()
		if err != nil {
			return fmt.Errorf("claim %s: %w", key, err)
		}
		if !claimed {
			return g.checkExisting(ctx, name, key, d.Message.ID)
		}

		done := false
		defer func() {
			if done {
				return
			}
			if delErr := g.store.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
				logger.Ctx(ctx).Warn("Failed to release idempotency key",
					zap.String("key", key), zap.Error(delErr))
			}
		}()

		if err := h(ctx, d); err != nil {
			return err
		}
		// 记录失败时释放占位，handler 会再执行一次
		if err := g.store.Set(context.WithoutCancel(ctx), key, stateDone, g.ttl).Err(); err != nil {
			return fmt.Errorf("record %s: %w", key, err)
		}
		done = true
		return nil
	}
}

func (g *RedisGuard) checkExisting(ctx context.Context, name, key, messageID string) error {
	state, err := g.store.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// 占位刚过期或被释放
		return fmt.Errorf("%w: %s", ErrInFlight, key)
	case err != nil:
		return fmt.Errorf("read %s: %w", key, err)
	case state == stateDone:
		logger.Ctx(ctx).Debug("Duplicate delivery skipped",
			zap.String("handler", name),
			zap.String("message_id", messageID))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInFlight, key)
	}
}
