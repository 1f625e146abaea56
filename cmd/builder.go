package cmd

import (
	"fmt"
	"net/http"

	"storefront/api"
	apicatalog "storefront/api/catalog"
	"storefront/api/health"
	apiorder "storefront/api/order"
	apioutbox "storefront/api/outbox"
	catalogapp "storefront/application/catalog"
	orderapp "storefront/application/order"
	"storefront/config"
	"storefront/infrastructure/outbox"
	"storefront/infrastructure/persistence/database"
	"storefront/infrastructure/persistence/gormstore"
	"storefront/infrastructure/persistence/retry"
	"storefront/pkg/clock"
	"storefront/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg      *config.Config
	db       *gorm.DB
	registry *prometheus.Registry
	clock    clock.Clock
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg, clock: clock.Real{}}
}

// WithDB 使用外部连接，不再按配置打开数据库
func (b *AppBuilder) WithDB(db *gorm.DB) *AppBuilder {
	b.db = db
	return b
}

func (b *AppBuilder) WithRegistry(reg *prometheus.Registry) *AppBuilder {
	b.registry = reg
	return b
}

func (b *AppBuilder) WithClock(c clock.Clock) *AppBuilder {
	b.clock = c
	return b
}

// Build creates the App instance
func (b *AppBuilder) Build() (*App, error) {
	logger.Info("Building application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env),
		zap.String("driver", b.cfg.Database.Driver))

	db := b.db
	ownsDB := false
	if db == nil {
		var err error
		db, err = database.Open(b.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		ownsDB = true
	}

	registry := b.registry
	if registry == nil {
		registry = NewMetricsRegistry()
	}

	factory, err := NewUnitOfWorkFactory(b.cfg, db, b.clock)
	if err != nil {
		return nil, err
	}
	outboxRepo := gormstore.NewOutboxRepository(db)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	router := api.NewRouter(b.cfg, api.Controllers{
		Health:  health.NewController(b.cfg, sqlDB, outboxRepo),
		Order:   apiorder.NewController(orderapp.NewService(factory)),
		Catalog: apicatalog.NewController(catalogapp.NewService(factory)),
		Outbox:  apioutbox.NewController(outboxRepo),
	}, registry)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	app := &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     db,
		ownsDB: ownsDB,
	}
	return app, nil
}

// NewUnitOfWorkFactory 组装仓储注册表、事件拦截器和重试策略，API 与测试共用
func NewUnitOfWorkFactory(cfg *config.Config, db *gorm.DB, clk clock.Clock) (*gormstore.UnitOfWorkFactory, error) {
	registry, err := gormstore.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository registry: %w", err)
	}
	codecs, err := outbox.NewDefaultCodecRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build codec registry: %w", err)
	}

	logger.Debug("Repositories registered", zap.Strings("repositories", registry.Names()))

	return gormstore.NewUnitOfWorkFactory(db, registry, outbox.NewInterceptor(codecs, clk), retry.FromAppConfig(cfg)), nil
}

// NewMetricsRegistry 带 Go runtime 和进程指标的独立注册表
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
