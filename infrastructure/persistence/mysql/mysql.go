package mysql

import (
	"fmt"
	"net"
	"time"

	"storefront/config"
	"storefront/infrastructure/persistence"
	"storefront/pkg/logger"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type Config struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	LogLevel        string
}

func FromAppConfig(c config.DatabaseConfig) Config {
	return Config{
		Host:            c.Host,
		Port:            c.Port,
		Username:        c.Username,
		Password:        c.Password,
		Database:        c.Database,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		SlowThreshold:   c.SlowThreshold,
		LogLevel:        c.LogLevel,
	}
}

// DSN always uses UTC so outbox timestamps compare across processes.
// The driver's own formatter builds it, so credentials need no escaping here.
func (c Config) DSN() string {
	port := c.Port
	if port == "" {
		port = "3306"
	}
	cfg := gomysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ReadTimeout = 10 * time.Second
	cfg.WriteTimeout = 10 * time.Second
	// Charset 不会返回错误
	_ = cfg.Apply(gomysql.Charset("utf8mb4", "utf8mb4_unicode_ci"))
	return cfg.FormatDSN()
}

func Connect(c Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(c.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(logger.ParseGormLogLevel(c.LogLevel), c.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := persistence.ConfigurePool(db, persistence.PoolConfig{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Database connected",
		zap.String("driver", "mysql"),
		zap.String("host", c.Host),
		zap.String("database", c.Database),
		zap.Int("max_open_conns", pool.MaxOpenConns),
		zap.Int("max_idle_conns", pool.MaxIdleConns),
		zap.Duration("conn_max_lifetime", pool.ConnMaxLifetime),
	)

	return db, nil
}
