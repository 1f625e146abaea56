// Command worker delivers committed outbox messages: notification mail,
// optional NATS forwarding and retention purge.
package main

import (
	"fmt"
	"os"

	"storefront/cmd"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cmd.Bootstrap(os.Args[1:])
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Worker.Enabled {
		logger.Info("Outbox worker disabled by config")
		return nil
	}

	ctx, stop := cmd.SignalContext()
	defer stop()

	worker, err := cmd.NewWorker(ctx, cfg, cmd.WorkerDeps{})
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}
	defer func() {
		if err := worker.Close(); err != nil {
			logger.Warn("Worker cleanup failed", zap.Error(err))
		}
	}()

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_attempts", cfg.Worker.MaxAttempts),
		zap.Duration("retention", cfg.Worker.Retention),
		zap.Bool("nats", cfg.NATS.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled),
	)
	return worker.Run(ctx)
}
