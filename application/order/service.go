/*
Package order 应用层 - 下单与订单状态流转编排

职责:
1. 接收 Controller 的请求 DTO
2. 通过 UnitOfWorkFactory.Execute 获取工作单元，版本冲突时整体重试
3. 调用聚合根方法执行业务，仓储只做暂存
4. 返回响应 DTO

应用服务不直接发布事件:
- Commit 时拦截器把聚合的待发布事件转成 outbox 消息，与业务数据同一事务写入
- outbox.Dispatcher 异步读取并投递
*/
package order

import (
	"context"

	"storefront/domain/catalog"
	"storefront/domain/order"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// Service 订单应用服务
type Service struct {
	uowFactory shared.UnitOfWorkFactory
}

func NewService(uowFactory shared.UnitOfWorkFactory) *Service {
	return &Service{uowFactory: uowFactory}
}

// PlaceOrder 读取商品、扣减库存并创建订单。
// 订单和商品暂存在同一个工作单元里，一次提交写入两者及全部 outbox 消息。
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	var placed *order.Order

	err := s.uowFactory.Execute(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		orders, err := shared.RepositoryFor(uow, order.Repository)
		if err != nil {
			return err
		}
		products, err := shared.RepositoryFor(uow, catalog.Repository)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			ids = append(ids, item.ProductID)
		}
		found, err := products.List(ctx, catalog.ByIDs(ids...))
		if err != nil {
			return err
		}
		byID := make(map[string]*catalog.Product, len(found))
		for _, p := range found {
			byID[p.ID()] = p
		}

		requests := make([]order.ItemRequest, 0, len(req.Items))
		for _, item := range req.Items {
			p, ok := byID[item.ProductID]
			if !ok {
				return catalog.NewProductNotFoundError(item.ProductID)
			}
			if !p.IsActive() {
				return catalog.NewProductDiscontinuedError(p.ID())
			}
			requests = append(requests, order.ItemRequest{
				ProductID:   p.ID(),
				ProductName: p.Name(),
				Quantity:    item.Quantity,
				UnitPrice:   p.Price(),
			})
		}

		o, err := order.NewOrder(req.CustomerID, req.CustomerEmail, requests)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			p := byID[item.ProductID]
			if err := p.ReserveStock(item.Quantity, o.ID()); err != nil {
				return err
			}
			products.Update(p)
		}
		orders.Add(o)

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("Order placed",
		zap.String("order_id", placed.ID()),
		zap.String("customer_id", placed.CustomerID()),
		zap.Int64("total_amount", placed.TotalAmount().Amount()))

	return toOrderResponse(placed), nil
}

func (s *Service) ConfirmPayment(ctx context.Context, orderID string, req ConfirmPaymentRequest) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.ConfirmPayment(req.PaymentRef)
	})
}

func (s *Service) ShipOrder(ctx context.Context, orderID string, req ShipOrderRequest) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.Ship(req.TrackingNumber)
	})
}

func (s *Service) CancelOrder(ctx context.Context, orderID string, req CancelOrderRequest) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.Cancel(req.Reason)
	})
}

// transition 每次重试都重新加载订单，拿到最新版本号
func (s *Service) transition(ctx context.Context, orderID string, apply func(o *order.Order) error) (*OrderResponse, error) {
	var updated *order.Order

	err := s.uowFactory.Execute(ctx, func(ctx context.Context, uow shared.UnitOfWork) error {
		orders, err := shared.RepositoryFor(uow, order.Repository)
		if err != nil {
			return err
		}
		o, err := load(ctx, orders, orderID)
		if err != nil {
			return err
		}
		if err := apply(o); err != nil {
			return err
		}
		orders.Update(o)
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("Order status changed",
		zap.String("order_id", updated.ID()),
		zap.String("status", string(updated.Status())))

	return toOrderResponse(updated), nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	orders, err := shared.RepositoryFor(s.uowFactory.New(), order.Repository)
	if err != nil {
		return nil, err
	}
	o, err := load(ctx, orders, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// ListOrders 按下单时间倒序分页，不加载订单项
func (s *Service) ListOrders(ctx context.Context, q ListOrdersQuery) (*shared.PagedResult[*OrderResponse], error) {
	spec := order.All()
	if q.CustomerID != "" {
		spec = order.ByCustomer(q.CustomerID)
	}
	if q.Status != "" {
		status := order.Status(q.Status)
		if !status.IsValid() {
			return nil, order.NewValidationError("status", "unknown order status "+q.Status)
		}
		spec = spec.Where(shared.Eq(order.FieldStatus, string(status)))
	}
	spec = order.NewestFirst(spec)

	orders, err := shared.RepositoryFor(s.uowFactory.New(), order.Repository)
	if err != nil {
		return nil, err
	}
	page, err := shared.ListPage(ctx, orders, spec, q.Page, q.PageSize)
	if err != nil {
		return nil, err
	}
	return shared.MapPage(page, toOrderResponse), nil
}

func load(ctx context.Context, orders shared.Repository[*order.Order], orderID string) (*order.Order, error) {
	o, ok, err := orders.FirstOrDefault(ctx, order.WithItems(order.ByID(orderID)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, order.NewOrderNotFoundError(orderID)
	}
	return o, nil
}
