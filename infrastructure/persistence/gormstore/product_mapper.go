package gormstore

import (
	"storefront/domain/catalog"
	"storefront/infrastructure/persistence/gormstore/po"
)

type ProductMapper struct{}

func (ProductMapper) Columns() map[string]string {
	return map[string]string{
		catalog.FieldID:        "id",
		catalog.FieldSKU:       "sku",
		catalog.FieldName:      "name",
		catalog.FieldPrice:     "price_amount",
		catalog.FieldStock:     "stock",
		catalog.FieldStatus:    "status",
		catalog.FieldCreatedAt: "created_at",
	}
}

// Relations 商品没有可预加载的关联
func (ProductMapper) Relations() map[string]string { return nil }

func (ProductMapper) ToRecord(p *catalog.Product) *po.ProductPO {
	return po.FromProductDomain(p)
}

func (ProductMapper) ToDomain(rec *po.ProductPO) (*catalog.Product, error) {
	return rec.ToDomain(), nil
}

func (ProductMapper) SetVersion(rec *po.ProductPO, version int) { rec.Version = version }

var _ Mapper[*catalog.Product, po.ProductPO] = ProductMapper{}
