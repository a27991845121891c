package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// step is a single unit of an order commit.
type step interface {
	Name() string
	Execute(ctx context.Context) error
}

// compensable is a step whose effect can be undone after a later step fails.
// The last step of a saga is never compensated and need not implement it.
type compensable interface {
	step
	Compensate(ctx context.Context) error
}

// commitSaga runs the steps in order and compensates the succeeded ones in
// reverse when a step fails.
type commitSaga struct {
	orderID string
	steps   []step
	journal port.CommitJournal
	logger  *zap.Logger
}

func newCommitSaga(orderID string, steps []step, journal port.CommitJournal, logger *zap.Logger) *commitSaga {
	return &commitSaga{
		orderID: orderID,
		steps:   steps,
		journal: journal,
		logger:  logger,
	}
}

func (c *commitSaga) run(ctx context.Context, payload string) error {
	c.record(ctx, domain.JournalStarted, "", payload, nil)

	done := make([]step, 0, len(c.steps))
	for _, st := range c.steps {
		c.logger.Debug("Executing commit step", zap.String("order", c.orderID), zap.String("step", st.Name()))
		if err := st.Execute(ctx); err != nil {
			c.logger.Warn("Commit step failed, compensating",
				zap.String("order", c.orderID), zap.String("step", st.Name()), zap.Error(err))
			c.record(ctx, domain.JournalCompensating, st.Name(), "", []string{err.Error()})

			failed := c.rollback(context.WithoutCancel(ctx), done)
			if len(failed) > 0 {
				c.record(ctx, domain.JournalFailed, st.Name(), "", append([]string{err.Error()}, failed...))
				return &domain.PartialCommitError{OrderID: c.orderID, Cause: err, Failed: failed}
			}
			c.record(ctx, domain.JournalAborted, st.Name(), "", []string{err.Error()})
			return err
		}
		done = append(done, st)
		c.record(ctx, domain.JournalStepDone, st.Name(), "", nil)
	}

	c.record(ctx, domain.JournalCompleted, "", "", nil)
	return nil
}

// rollback compensates steps last to first and returns the ones that failed.
func (c *commitSaga) rollback(ctx context.Context, steps []step) []string {
	var failed []string
	for i := len(steps) - 1; i >= 0; i-- {
		st, ok := steps[i].(compensable)
		if !ok {
			continue
		}
		c.logger.Debug("Compensating commit step", zap.String("order", c.orderID), zap.String("step", st.Name()))
		if err := st.Compensate(ctx); err != nil {
			c.logger.Error("Failed to compensate commit step",
				zap.String("order", c.orderID), zap.String("step", st.Name()), zap.Error(err))
			failed = append(failed, fmt.Sprintf("%s: %s", st.Name(), err))
		}
	}
	return failed
}

func (c *commitSaga) record(ctx context.Context, status domain.JournalStatus, stepName string,
	payload string, errs []string) {
	if c.journal == nil {
		return
	}
	entry := &domain.JournalEntry{
		OrderID:     c.orderID,
		Status:      status,
		CurrentStep: stepName,
		Payload:     payload,
		Errors:      errs,
		RecordedAt:  time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}
	if err := c.journal.Save(ctx, entry); err != nil {
		c.logger.Warn("Save commit journal", zap.String("order", c.orderID), zap.Error(err))
	}
}

// reserveStockStep takes a line's quantity out of stock and into sold.
type reserveStockStep struct {
	catalog port.CatalogStore
	item    domain.OrderItem
}

func (s *reserveStockStep) Name() string { return "reserve_stock:" + s.item.ProductID }

func (s *reserveStockStep) Execute(ctx context.Context) error {
	applied, err := s.catalog.ApplyStockDelta(ctx, s.item.ProductID, -s.item.Quantity, s.item.Quantity)
	if err != nil {
		return fmt.Errorf("reserve stock for product %s: %w", s.item.ProductID, err)
	}
	if applied {
		return nil
	}

	// the conditional write was refused, report what is left
	products, err := s.catalog.FindProductsByIDs(ctx, []string{s.item.ProductID})
	if err != nil {
		return fmt.Errorf("read product %s: %w", s.item.ProductID, err)
	}
	if len(products) == 0 {
		return domain.ErrProductsNotFound
	}
	return &domain.StockError{
		ProductID: s.item.ProductID,
		Name:      products[0].Name,
		Available: products[0].Stock,
		Requested: s.item.Quantity,
	}
}

func (s *reserveStockStep) Compensate(ctx context.Context) error {
	applied, err := s.catalog.ApplyStockDelta(ctx, s.item.ProductID, s.item.Quantity, -s.item.Quantity)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("product %s refused restoring %d units", s.item.ProductID, s.item.Quantity)
	}
	return nil
}

// insertOrderStep persists the order. It is always the last step, so no
// compensation exists for it.
type insertOrderStep struct {
	orders  port.OrderRepository
	order   *domain.Order
	created *domain.Order
}

func (s *insertOrderStep) Name() string { return "insert_order" }

func (s *insertOrderStep) Execute(ctx context.Context) error {
	created, err := s.orders.CreateOrder(ctx, s.order)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	s.created = created
	return nil
}
