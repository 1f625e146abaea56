package po

import (
	"time"

	"storefront/domain/catalog"
	"storefront/domain/shared"
)

type ProductPO struct {
	ID            string    `gorm:"primaryKey;size:36"`
	SKU           string    `gorm:"size:64;uniqueIndex;not null"`
	Name          string    `gorm:"size:255;index;not null"`
	Description   string    `gorm:"type:text"`
	PriceAmount   int64     `gorm:"not null"`
	PriceCurrency string    `gorm:"size:3;not null"`
	Stock         int       `gorm:"not null"`
	Status        string    `gorm:"size:20;index;not null"`
	Version       int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (ProductPO) TableName() string {
	return "products"
}

func FromProductDomain(p *catalog.Product) *ProductPO {
	return &ProductPO{
		ID:            p.ID(),
		SKU:           p.SKU(),
		Name:          p.Name(),
		Description:   p.Description(),
		PriceAmount:   p.Price().Amount(),
		PriceCurrency: p.Price().Currency(),
		Stock:         p.Stock(),
		Status:        string(p.Status()),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func (po *ProductPO) ToDomain() *catalog.Product {
	return catalog.RebuildFromDTO(catalog.ReconstructionDTO{
		ID:          po.ID,
		SKU:         po.SKU,
		Name:        po.Name,
		Description: po.Description,
		Price:       shared.NewMoney(po.PriceAmount, po.PriceCurrency),
		Stock:       po.Stock,
		Status:      catalog.Status(po.Status),
		Version:     po.Version,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	})
}
