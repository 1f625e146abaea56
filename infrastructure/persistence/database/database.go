// Package database opens the configured relational store.
package database

import (
	"fmt"

	"storefront/config"
	"storefront/infrastructure/persistence/gormstore"
	"storefront/infrastructure/persistence/mysql"
	"storefront/infrastructure/persistence/postgres"
	"storefront/infrastructure/persistence/sqlite"
	"storefront/pkg/logger"

	"gorm.io/gorm"
)

// Open connects with cfg.Driver and, when cfg.AutoMigrate is set, migrates
// the storefront tables.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		db, err = mysql.Connect(mysql.FromAppConfig(cfg))
	case "postgres":
		db, err = postgres.Connect(postgres.FromAppConfig(cfg))
	case "sqlite", "":
		db, err = sqlite.Open(sqlite.DSN(cfg.Database), logger.ParseGormLogLevel(cfg.LogLevel))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := gormstore.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
