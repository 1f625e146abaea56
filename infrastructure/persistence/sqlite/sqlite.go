// Package sqlite opens the embedded database used in development and tests.
package sqlite

import (
	"fmt"
	"strings"

	"storefront/infrastructure/persistence"
	"storefront/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN is a private in-memory database shared by the connections of one pool.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
}

// DSN turns a path (or ":memory:") into a go-sqlite3 DSN.
func DSN(path string) string {
	if path == "" || path == ":memory:" {
		return MemoryDSN("storefront")
	}
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Open uses a single connection: SQLite serialises writers anyway and a
// shared in-memory database vanishes with its last connection.
func Open(dsn string, level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(level, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if _, err := persistence.ConfigurePool(db, persistence.PoolConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: -1,
		ConnMaxIdleTime: -1,
	}); err != nil {
		return nil, err
	}

	logger.Info("Database connected", zap.String("driver", "sqlite"), zap.String("dsn", dsn))
	return db, nil
}
