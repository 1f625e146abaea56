package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/api"
	"storefront/config"
	"storefront/infrastructure/persistence/database"
	"storefront/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultShutdownTimeout = 10 * time.Second

// App 应用程序结构体
type App struct {
	config *config.Config
	router *api.Router
	server *http.Server
	db     *gorm.DB
	ownsDB bool
}

// Run 阻塞直到 ctx 取消或服务异常退出，然后优雅关闭
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", a.server.Addr),
			zap.String("health", "/api/v1/health"),
			zap.String("metrics", "/metrics"))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("HTTP server failed", zap.Error(serveErr))
		}
	}

	return errors.Join(serveErr, a.Shutdown())
}

// Shutdown 等待进行中的请求完成，再关闭数据库
func (a *App) Shutdown() error {
	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.ownsDB {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	logger.Info("Server stopped")
	return errors.Join(errs...)
}

// Handler 获取 HTTP handler（用于测试）
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
