// Package catalog 商品目录子域
package catalog

import (
	"fmt"
	"strings"
	"time"

	"storefront/domain/shared"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusDiscontinued Status = "DISCONTINUED"
)

// Product aggregate root. Discontinue is a soft delete: the row stays and
// the status flips.
type Product struct {
	shared.EventRecorder

	id          string
	sku         string
	name        string
	description string
	price       shared.Money
	stock       int
	status      Status
	version     int
	createdAt   time.Time
	updatedAt   time.Time
	isNew       bool
}

type NewProductParams struct {
	SKU         string
	Name        string
	Description string
	Price       shared.Money
	Stock       int
}

// NewProduct lists a new product and records ProductListed.
func NewProduct(p NewProductParams) (*Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(p.SKU))
	if sku == "" {
		return nil, NewValidationError("sku", "sku is required")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if p.Price.Amount() <= 0 {
		return nil, NewValidationError("price", ErrInvalidPrice.Error())
	}
	if p.Price.Currency() == "" {
		return nil, NewValidationError("currency", "currency is required")
	}
	if p.Stock < 0 {
		return nil, NewValidationError("stock", ErrInvalidQuantity.Error())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate product ID: %w", err)
	}

	now := time.Now().UTC()
	prod := &Product{
		id:          id.String(),
		sku:         sku,
		name:        name,
		description: p.Description,
		price:       p.Price,
		stock:       p.Stock,
		status:      StatusActive,
		createdAt:   now,
		updatedAt:   now,
		isNew:       true,
	}
	prod.RecordEvent(ProductListed{
		ProductID: prod.id,
		SKU:       prod.sku,
		Name:      prod.name,
		Price:     p.Price.Amount(),
		Currency:  p.Price.Currency(),
		Stock:     prod.stock,
		Timestamp: now,
	})
	return prod, nil
}

type ReconstructionDTO struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       shared.Money
	Stock       int
	Status      Status
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RebuildFromDTO 仅供仓储层使用
func RebuildFromDTO(dto ReconstructionDTO) *Product {
	return &Product{
		id:          dto.ID,
		sku:         dto.SKU,
		name:        dto.Name,
		description: dto.Description,
		price:       dto.Price,
		stock:       dto.Stock,
		status:      dto.Status,
		version:     dto.Version,
		createdAt:   dto.CreatedAt,
		updatedAt:   dto.UpdatedAt,
	}
}

func (p *Product) ensureActive() error {
	if p.status != StatusActive {
		return NewProductDiscontinuedError(p.id)
	}
	return nil
}

func (p *Product) ChangePrice(price shared.Money) error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	if price.Amount() <= 0 {
		return NewValidationError("price", ErrInvalidPrice.Error())
	}
	if price.Currency() != p.price.Currency() {
		return NewValidationError("currency", shared.ErrCurrencyMismatch.Error())
	}
	if price.Equals(p.price) {
		return nil
	}

	now := time.Now().UTC()
	old := p.price
	p.price = price
	p.updatedAt = now
	p.RecordEvent(ProductPriceChanged{
		ProductID: p.id,
		OldPrice:  old.Amount(),
		NewPrice:  price.Amount(),
		Currency:  price.Currency(),
		Timestamp: now,
	})
	return nil
}

func (p *Product) Restock(quantity int) error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	if quantity <= 0 {
		return NewValidationError("quantity", ErrInvalidQuantity.Error())
	}
	p.adjustStock(quantity, "restock")
	return nil
}

// ReserveStock takes quantity units out of stock for an order.
func (p *Product) ReserveStock(quantity int, orderRef string) error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	if quantity <= 0 {
		return NewValidationError("quantity", ErrInvalidQuantity.Error())
	}
	if p.stock < quantity {
		return NewInsufficientStockError(p.id, p.stock, quantity)
	}
	p.adjustStock(-quantity, "reserved:"+orderRef)
	return nil
}

func (p *Product) adjustStock(delta int, reason string) {
	now := time.Now().UTC()
	p.stock += delta
	p.updatedAt = now
	p.RecordEvent(StockAdjusted{
		ProductID: p.id,
		Delta:     delta,
		Stock:     p.stock,
		Reason:    reason,
		Timestamp: now,
	})
}

// Discontinue 软删除，重复调用返回错误
func (p *Product) Discontinue() error {
	if err := p.ensureActive(); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.status = StatusDiscontinued
	p.updatedAt = now
	p.RecordEvent(ProductDiscontinued{ProductID: p.id, SKU: p.sku, Timestamp: now})
	return nil
}

func (p *Product) MarkPersisted() {
	if !p.isNew {
		p.version++
	}
	p.isNew = false
}

func (p *Product) ID() string           { return p.id }
func (p *Product) SKU() string          { return p.sku }
func (p *Product) Name() string         { return p.name }
func (p *Product) Description() string  { return p.description }
func (p *Product) Price() shared.Money  { return p.price }
func (p *Product) Stock() int           { return p.stock }
func (p *Product) Status() Status       { return p.status }
func (p *Product) IsActive() bool       { return p.status == StatusActive }
func (p *Product) IsNew() bool          { return p.isNew }
func (p *Product) Version() int         { return p.version }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

var (
	_ shared.AggregateRoot = (*Product)(nil)
	_ shared.EventSource   = (*Product)(nil)
	_ shared.Persistable   = (*Product)(nil)
)
