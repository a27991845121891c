package service

import (
	"context"
	"errors"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/MikeRez0/storefront/internal/core/service"

// Stores groups the collaborators the order ledger reads and mutates.
type Stores struct {
	Orders  port.OrderRepository
	Catalog port.CatalogStore
	Coupons port.CouponStore
	Users   port.UserAccountStore
}

type Service struct {
	orders  port.OrderRepository
	catalog port.CatalogStore
	coupons port.CouponStore
	users   port.UserAccountStore
	events  port.EventPublisher
	journal port.CommitJournal
	logger  *zap.Logger
	tracer  trace.Tracer
}

var _ port.OrderService = (*Service)(nil)

// NewService builds the order ledger. events and journal may be nil.
func NewService(stores Stores, events port.EventPublisher, journal port.CommitJournal,
	logger *zap.Logger) (*Service, error) {
	if stores.Orders == nil || stores.Catalog == nil || stores.Coupons == nil || stores.Users == nil {
		return nil, errors.New("service: all stores are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:  stores.Orders,
		catalog: stores.Catalog,
		coupons: stores.Coupons,
		users:   stores.Users,
		events:  events,
		journal: journal,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

func (s *Service) publish(ctx context.Context, t domain.OrderEventType, o *domain.Order) {
	s.publishEvent(ctx, domain.NewOrderEvent(t, o, time.Now()))
}

func (s *Service) publishEvent(ctx context.Context, event *domain.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Publish order event",
			zap.String("event", string(event.Type)), zap.String("order", event.OrderID), zap.Error(err))
	}
}

// orderError keeps business errors and hides storage failures behind ErrInternal.
func (s *Service) orderError(op string, orderID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDataNotFound):
		return domain.ErrOrderNotFound
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrValidation):
		return err
	}
	s.logger.Error(op, zap.String("order", orderID), zap.Error(err))
	return domain.ErrInternal
}
