package events

import (
	"context"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"go.uber.org/zap"
)

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event *domain.OrderEvent) error {
	p.logger.Debug("Order event",
		zap.String("event", string(event.Type)),
		zap.String("order", event.OrderID),
		zap.String("status", string(event.Status)))
	return nil
}
