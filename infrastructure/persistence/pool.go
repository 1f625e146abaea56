package persistence

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 10 * time.Minute
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// PoolConfig sizes the database/sql pool behind a *gorm.DB.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (c *PoolConfig) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	// 负数表示不限制
	switch {
	case c.ConnMaxLifetime == 0:
		c.ConnMaxLifetime = DefaultConnMaxLifetime
	case c.ConnMaxLifetime < 0:
		c.ConnMaxLifetime = 0
	}
	switch {
	case c.ConnMaxIdleTime == 0:
		c.ConnMaxIdleTime = DefaultConnMaxIdleTime
	case c.ConnMaxIdleTime < 0:
		c.ConnMaxIdleTime = 0
	}
}

// ConfigurePool applies c (zero fields take defaults) and returns the effective values.
func ConfigurePool(db *gorm.DB, c PoolConfig) (PoolConfig, error) {
	c.applyDefaults()
	sqlDB, err := db.DB()
	if err != nil {
		return c, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	return c, nil
}
