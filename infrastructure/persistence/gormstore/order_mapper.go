package gormstore

import (
	"storefront/domain/order"
	"storefront/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
)

// OrderMapper 订单聚合与 orders / order_items 两张表之间的映射
type OrderMapper struct{}

func (OrderMapper) Columns() map[string]string {
	return map[string]string{
		order.FieldID:         "id",
		order.FieldCustomerID: "customer_id",
		order.FieldStatus:     "status",
		order.FieldTotal:      "total_amount",
		order.FieldPlacedAt:   "placed_at",
	}
}

func (OrderMapper) Relations() map[string]string {
	return map[string]string{order.RelationItems: "Items"}
}

func (OrderMapper) ToRecord(o *order.Order) *po.OrderPO { return po.FromOrderDomain(o) }

func (OrderMapper) ToDomain(rec *po.OrderPO) (*order.Order, error) {
	return rec.ToDomain(), nil
}

func (OrderMapper) SetVersion(rec *po.OrderPO, version int) { rec.Version = version }

func (OrderMapper) InsertChildren(tx *gorm.DB, o *order.Order) error {
	items := po.FromOrderItems(o.ID(), o.Items())
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// SyncChildren writes only the lines added or removed since the order was loaded.
func (OrderMapper) SyncChildren(tx *gorm.DB, o *order.Order) error {
	if removed := o.RemovedItems(); len(removed) > 0 {
		ids := make([]string, len(removed))
		for i, item := range removed {
			ids[i] = item.ID()
		}
		if err := tx.Where("order_id = ? AND id IN ?", o.ID(), ids).Delete(&po.OrderItemPO{}).Error; err != nil {
			return err
		}
	}
	if added := po.FromOrderItems(o.ID(), o.AddedItems()); len(added) > 0 {
		if err := tx.Create(&added).Error; err != nil {
			return err
		}
	}
	return nil
}

func (OrderMapper) DeleteChildren(tx *gorm.DB, o *order.Order) error {
	return tx.Where("order_id = ?", o.ID()).Delete(&po.OrderItemPO{}).Error
}

var (
	_ Mapper[*order.Order, po.OrderPO] = OrderMapper{}
	_ ChildWriter[*order.Order]        = OrderMapper{}
)
