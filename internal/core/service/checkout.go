package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// mergeLines validates cart lines and folds repeated products together,
// keeping the order in which products first appear.
func mergeLines(lines []domain.CartLine) ([]domain.CartLine, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("cart is empty")
	}
	merged := make([]domain.CartLine, 0, len(lines))
	pos := make(map[string]int, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return nil, domain.NewValidationError("product id is required")
		}
		if l.Quantity < 1 {
			return nil, domain.NewValidationError("quantity for product %s must be at least 1", l.ProductID)
		}
		if i, ok := pos[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

func (s *Service) ResolveCart(ctx context.Context, customerID string, lines []domain.CartLine,
	couponCode string) (*domain.OrderDraft, error) {
	if customerID == "" {
		return nil, domain.NewValidationError("customer is required")
	}
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(merged))
	for i, l := range merged {
		ids[i] = l.ProductID
	}

	products, err := s.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Find products", zap.Strings("products", ids), zap.Error(err))
		return nil, domain.ErrInternal
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if len(byID) != len(ids) {
		return nil, domain.ErrProductsNotFound
	}

	items := make([]domain.OrderItem, 0, len(merged))
	for _, l := range merged {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, domain.ErrProductsNotFound
		}
		if l.Quantity > p.Stock {
			return nil, &domain.StockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.Stock,
				Requested: l.Quantity,
			}
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			SellerID:  p.SellerID,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
		})
	}

	var coupon *domain.Coupon
	if code := strings.TrimSpace(couponCode); code != "" {
		coupon, err = s.coupons.FindCouponByName(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrDataNotFound) {
				return nil, domain.CouponNotFound(code)
			}
			s.logger.Error("Find coupon", zap.String("coupon", code), zap.Error(err))
			return nil, domain.ErrInternal
		}
		if err := coupon.Validate(time.Now()); err != nil {
			return nil, err
		}
	}

	pricing, err := domain.PriceItems(items, coupon)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		s.logger.Error("Price cart", zap.Error(err))
		return nil, domain.ErrInternal
	}

	draft := &domain.OrderDraft{
		CustomerID: customerID,
		Items:      items,
		Pricing:    pricing,
	}
	if coupon != nil {
		draft.CouponID = coupon.ID
	}
	return draft, nil
}

func (s *Service) CommitOrder(ctx context.Context, draft *domain.OrderDraft, method domain.PaymentMethod,
	address domain.Address) (*domain.Order, error) {
	if draft == nil || len(draft.Items) == 0 {
		return nil, domain.NewValidationError("order has no items")
	}
	if !method.Valid() {
		return nil, domain.NewValidationError("unknown payment method %s", method)
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "CommitOrder")
	defer span.End()

	now := time.Now()
	order := &domain.Order{
		ID:             uuid.NewString(),
		CustomerID:     draft.CustomerID,
		Items:          draft.Items,
		CouponID:       draft.CouponID,
		TotalPrice:     draft.Pricing.Total,
		DiscountAmount: draft.Pricing.Discount,
		FinalPrice:     draft.Pricing.Final,
		PaymentMethod:  method,
		Address:        address,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int("order.lines", len(order.Items)))

	steps := make([]step, 0, len(order.Items)+1)
	for _, item := range order.Items {
		steps = append(steps, &reserveStockStep{catalog: s.catalog, item: item})
	}
	insert := &insertOrderStep{orders: s.orders, order: order}
	steps = append(steps, insert)

	payload, _ := json.Marshal(order.Items)
	saga := newCommitSaga(order.ID, steps, s.journal, s.logger)
	if err := saga.run(ctx, string(payload)); err != nil {
		span.RecordError(err)
		var partial *domain.PartialCommitError
		switch {
		case errors.As(err, &partial):
			s.logger.Error("Commit order left partial state", zap.String("order", order.ID), zap.Error(err))
			return nil, err
		case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrDataNotFound):
			return nil, err
		}
		s.logger.Error("Commit order", zap.String("order", order.ID), zap.Error(err))
		return nil, domain.ErrInternal
	}

	created := insert.created
	if err := s.users.IncrementOrderCount(ctx, created.CustomerID); err != nil {
		s.logger.Warn("Increment order count",
			zap.String("customer", created.CustomerID), zap.String("order", created.ID), zap.Error(err))
	}

	s.publish(ctx, domain.OrderEventCreated, created)
	s.logger.Info("Order committed",
		zap.String("order", created.ID),
		zap.String("customer", created.CustomerID),
		zap.Stringer("final", created.FinalPrice))

	return created, nil
}

func (s *Service) PlaceOrder(ctx context.Context, checkout *domain.Checkout) (*domain.Order, error) {
	if checkout == nil {
		return nil, domain.ErrValidation
	}
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	draft, err := s.ResolveCart(ctx, checkout.CustomerID, checkout.Lines, checkout.CouponCode)
	if err != nil {
		return nil, err
	}
	return s.CommitOrder(ctx, draft, checkout.PaymentMethod, checkout.Address)
}
