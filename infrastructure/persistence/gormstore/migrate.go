package gormstore

import (
	"fmt"

	"storefront/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
)

// Models lists every table the storefront owns.
func Models() []any {
	return []any{
		&po.OrderPO{},
		&po.OrderItemPO{},
		&po.ProductPO{},
		&po.OutboxMessagePO{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
