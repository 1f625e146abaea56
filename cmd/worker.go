package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/application/notification"
	"storefront/config"
	"storefront/infrastructure/idempotency"
	natspub "storefront/infrastructure/messaging/nats"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence/database"
	"storefront/infrastructure/persistence/gormstore"
	"storefront/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Worker outbox 投递进程：dispatcher + 保留期清理 + /metrics
type Worker struct {
	config     *config.Config
	dispatcher *outbox.Dispatcher
	metrics    *http.Server
	closers    []func() error
}

// WorkerDeps 可选依赖；nil 时按配置创建
type WorkerDeps struct {
	DB       *gorm.DB
	Registry *prometheus.Registry
	// Forward 替代 NATS 发布器
	Forward outbox.Handler
	// Store 替代 Redis 去重
	Store idempotency.Store
}

// NewWorker 组装 worker 依赖。外部依赖在 Run 返回后由 Close 释放
func NewWorker(ctx context.Context, cfg *config.Config, deps WorkerDeps) (*Worker, error) {
	w := &Worker{config: cfg}

	db := deps.DB
	if db == nil {
		var err error
		db, err = database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		w.closers = append(w.closers, func() error { return database.Close(db) })
	}

	codecs, err := outbox.NewDefaultCodecRegistry()
	if err != nil {
		w.Close()
		return nil, err
	}

	forward := deps.Forward
	if forward == nil && cfg.NATS.Enabled {
		nc, err := natspub.Connect(cfg.NATS)
		if err != nil {
			w.Close()
			return nil, err
		}
		w.closers = append(w.closers, func() error { return nc.Drain() })
		forward = natspub.NewPublisher(nc, cfg.NATS.SubjectPrefix).Handle
		logger.Info("Forwarding outbox messages to NATS",
			zap.String("url", cfg.NATS.URL),
			zap.String("subject_prefix", cfg.NATS.SubjectPrefix))
	}

	var guard notification.Guard
	store := deps.Store
	if store == nil && cfg.Redis.Enabled {
		client, err := idempotency.NewClient(ctx, cfg.Redis)
		if err != nil {
			w.Close()
			return nil, err
		}
		w.closers = append(w.closers, client.Close)
		store = client
	}
	if store != nil {
		guard = idempotency.NewRedisGuard(store, cfg.App.Name, cfg.Redis.IdempotencyTTL).Wrap
	}

	handlers := outbox.NewHandlerRegistry()
	if err := notification.Register(handlers, notification.Registration{
		Types:   codecs.Types(),
		Mailer:  notification.NewLoggingMailer(cfg.Mail.From, logger.Named("mailer")),
		Forward: forward,
		Guard:   guard,
	}); err != nil {
		w.Close()
		return nil, err
	}

	registry := deps.Registry
	if registry == nil {
		registry = NewMetricsRegistry()
	}

	dispatcherCfg := outbox.DefaultDispatcherConfig()
	dispatcherCfg.PollInterval = cfg.Worker.PollInterval
	dispatcherCfg.BatchSize = cfg.Worker.BatchSize
	dispatcherCfg.MaxAttempts = cfg.Worker.MaxAttempts
	dispatcherCfg.Retention = cfg.Worker.Retention

	w.dispatcher, err = outbox.NewDispatcher(
		gormstore.NewOutboxRepository(db),
		codecs,
		handlers,
		dispatcherCfg,
		outbox.WithMetrics(outbox.NewMetrics(registry)),
		outbox.WithLogger(logger.Named("outbox.dispatcher").With(zap.String("app", cfg.App.Name))),
	)
	if err != nil {
		w.Close()
		return nil, err
	}

	if cfg.Worker.MetricsAddr != "" {
		w.metrics = &http.Server{
			Addr:              cfg.Worker.MetricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return w, nil
}

// Run 阻塞直到 ctx 取消
func (w *Worker) Run(ctx context.Context) error {
	metricsErr := make(chan error, 1)
	if w.metrics != nil {
		go func() {
			logger.Info("Worker metrics listening", zap.String("addr", w.metrics.Addr))
			if err := w.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				metricsErr <- err
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.dispatcher.Run(runCtx) }()

	var err error
	select {
	case err = <-done:
	case err = <-metricsErr:
		cancel()
		<-done
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if w.metrics != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		err = errors.Join(err, w.metrics.Shutdown(shutdownCtx))
	}
	return err
}

// Close 按创建的逆序释放外部连接
func (w *Worker) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	w.closers = nil
	return errors.Join(errs...)
}
