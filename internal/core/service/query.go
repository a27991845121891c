package service

import (
	"context"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"go.uber.org/zap"
)

func (s *Service) GetOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	order, err := s.orders.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, s.orderError("Get order", orderID, err)
	}
	if !order.VisibleTo(actor) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, page domain.Page) (*domain.OrderList, error) {
	return s.listOrders(ctx, domain.OrderFilter{}, page)
}

func (s *Service) ListOrdersByCustomer(ctx context.Context, customerID string, page domain.Page) (*domain.OrderList, error) {
	if customerID == "" {
		return nil, domain.NewValidationError("customer is required")
	}
	return s.listOrders(ctx, domain.OrderFilter{CustomerID: customerID}, page)
}

func (s *Service) ListOrdersBySeller(ctx context.Context, sellerID string, page domain.Page) (*domain.OrderList, error) {
	if sellerID == "" {
		return nil, domain.NewValidationError("seller is required")
	}
	return s.listOrders(ctx, domain.OrderFilter{SellerID: sellerID}, page)
}

func (s *Service) listOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) (*domain.OrderList, error) {
	page = page.Normalize()
	orders, total, err := s.orders.ListOrders(ctx, filter, page)
	if err != nil {
		s.logger.Error("List orders",
			zap.String("customer", filter.CustomerID),
			zap.String("seller", filter.SellerID),
			zap.Error(err))
		return nil, domain.ErrInternal
	}
	if orders == nil {
		orders = make([]*domain.Order, 0)
	}
	return &domain.OrderList{
		Orders:     orders,
		Pagination: domain.NewPagination(page, total),
	}, nil
}

// DeleteOrder removes the order outright, ignoring its state and stock.
func (s *Service) DeleteOrder(ctx context.Context, actor domain.Actor, orderID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return s.orderError("Delete order", orderID, err)
	}
	s.publish(ctx, domain.OrderEventDeleted, &domain.Order{ID: orderID})
	s.logger.Info("Order deleted", zap.String("order", orderID), zap.String("admin", actor.ID))
	return nil
}
