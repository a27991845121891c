package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (s *Service) CancelOrder(ctx context.Context, orderID string, customerID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CancelOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	now := time.Now()
	order, err := s.orders.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		return o.Cancel(customerID, now)
	})
	if err != nil {
		return nil, s.orderError("Cancel order", orderID, err)
	}

	// the order is cancelled at this point; restoring stock must not be cut
	// short by the caller going away
	restoreCtx := context.WithoutCancel(ctx)
	var (
		failed     []string
		unrestored []domain.CartLine
	)
	for _, item := range order.Items {
		applied, err := s.catalog.ApplyStockDelta(restoreCtx, item.ProductID, item.Quantity, -item.Quantity)
		if err != nil || !applied {
			s.logger.Error("Restore stock for cancelled order",
				zap.String("order", order.ID),
				zap.String("product", item.ProductID),
				zap.Int64("quantity", item.Quantity),
				zap.Bool("applied", applied),
				zap.Error(err))
			failed = append(failed, fmt.Sprintf("product %s: %d units", item.ProductID, item.Quantity))
			unrestored = append(unrestored, domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	event := domain.NewOrderEvent(domain.OrderEventCancelled, order, time.Now())
	event.Unrestored = unrestored
	s.publishEvent(ctx, event)

	if len(failed) > 0 {
		// the cancellation itself is persisted, hand it back with the error
		return order, &domain.PartialCommitError{OrderID: order.ID, Failed: failed}
	}
	s.logger.Info("Order cancelled", zap.String("order", order.ID), zap.String("customer", customerID))
	return order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, orderID string,
	patch domain.StatusPatch) (*domain.Order, error) {
	if actor.Role != domain.RoleSeller && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	var prev domain.OrderStatus
	order, err := s.orders.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		if actor.Role == domain.RoleSeller && !o.HasSeller(actor.ID) {
			return domain.ErrForbidden
		}
		prev = o.Status
		return o.ApplyStatus(patch, time.Now())
	})
	if err != nil {
		return nil, s.orderError("Update order status", orderID, err)
	}

	if order.Status != prev {
		s.publish(ctx, domain.OrderEventStatusChanged, order)
		s.logger.Info("Order status changed",
			zap.String("order", order.ID),
			zap.String("from", string(prev)),
			zap.String("to", string(order.Status)))
	}
	return order, nil
}

func (s *Service) UpdateRefund(ctx context.Context, actor domain.Actor, orderID string,
	patch domain.RefundPatch) (*domain.Order, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	order, err := s.orders.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		return o.ApplyRefund(patch, time.Now())
	})
	if err != nil {
		return nil, s.orderError("Update order refund", orderID, err)
	}

	s.publish(ctx, domain.OrderEventRefundUpdated, order)
	return order, nil
}
