// Package catalog 应用层 - 商品上架、调价、补货与检索
package catalog

import (
	"context"
	"strings"

	"storefront/domain/catalog"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

type Service struct {
	uowFactory shared.UnitOfWorkFactory
}

func NewService(uowFactory shared.UnitOfWorkFactory) *Service {
	return &Service{uowFactory: uowFactory}
}

// ListProduct 上架新商品，SKU 重复返回冲突
func (s *Service) ListProduct(ctx context.Context, req ListProductRequest) (*ProductResponse, error) {
	var listed *catalog.Product

	err := s.uowFactory.Execute(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		products, err := shared.RepositoryFor(uow, catalog.Repository)
		if err != nil {
			return err
		}

		p, err := catalog.NewProduct(catalog.NewProductParams{
			SKU:         req.SKU,
			Name:        req.Name,
			Description: req.Description,
			Price:       shared.NewMoney(req.Price, strings.ToUpper(req.Currency)),
			Stock:       req.Stock,
		})
		if err != nil {
			return err
		}

		_, exists, err := products.FirstOrDefault(ctx, catalog.BySKU(p.SKU()))
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("product", "sku "+p.SKU()+" already exists")
		}

		products.Add(p)
		listed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("Product listed", zap.String("product_id", listed.ID()), zap.String("sku", listed.SKU()))
	return toProductResponse(listed), nil
}

func (s *Service) ChangePrice(ctx context.Context, productID string, req ChangePriceRequest) (*ProductResponse, error) {
	return s.modify(ctx, productID, func(p *catalog.Product) error {
		return p.ChangePrice(shared.NewMoney(req.Price, strings.ToUpper(req.Currency)))
	})
}

func (s *Service) Restock(ctx context.Context, productID string, req RestockRequest) (*ProductResponse, error) {
	return s.modify(ctx, productID, func(p *catalog.Product) error {
		return p.Restock(req.Quantity)
	})
}

// Discontinue 软删除：行保留，状态改为 DISCONTINUED
func (s *Service) Discontinue(ctx context.Context, productID string) error {
	_, err := s.modify(ctx, productID, func(p *catalog.Product) error {
		return p.Discontinue()
	})
	return err
}

func (s *Service) modify(ctx context.Context, productID string, apply func(p *catalog.Product) error) (*ProductResponse, error) {
	var updated *catalog.Product

	err := s.uowFactory.Execute(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		products, err := shared.RepositoryFor(uow, catalog.Repository)
		if err != nil {
			return err
		}
		p, err := load(ctx, products, productID)
		if err != nil {
			return err
		}
		if err := apply(p); err != nil {
			return err
		}
		products.Update(p)
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(updated), nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (*ProductResponse, error) {
	products, err := shared.RepositoryFor(s.uowFactory.New(), catalog.Repository)
	if err != nil {
		return nil, err
	}
	p, err := load(ctx, products, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// SearchProducts 只检索在售商品，按名称排序
func (s *Service) SearchProducts(ctx context.Context, q SearchProductsQuery) (*shared.PagedResult[*ProductResponse], error) {
	spec := catalog.NameContains(catalog.Active(), q.Term)
	spec = catalog.PriceBetween(spec, q.MinPrice, q.MaxPrice)
	spec = spec.SortBy(catalog.FieldName, shared.Asc)
	if q.CountOnly {
		spec = spec.CountOnly()
	}

	products, err := shared.RepositoryFor(s.uowFactory.New(), catalog.Repository)
	if err != nil {
		return nil, err
	}
	page, err := shared.ListPage(ctx, products, spec, q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}
	return shared.MapPage(page, toProductResponse), nil
}

func load(ctx context.Context, products shared.Repository[*catalog.Product], productID string) (*catalog.Product, error) {
	p, ok, err := products.FirstOrDefault(ctx, catalog.ByID(productID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.NewProductNotFoundError(productID)
	}
	return p, nil
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID(),
		SKU:         p.SKU(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price().Amount(),
		Currency:    p.Price().Currency(),
		Stock:       p.Stock(),
		Status:      string(p.Status()),
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}
