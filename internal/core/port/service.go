package port

import (
	"context"

	"github.com/MikeRez0/storefront/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type OrderService interface {
	ResolveCart(ctx context.Context, customerID string, lines []domain.CartLine, couponCode string) (*domain.OrderDraft, error)
	CommitOrder(ctx context.Context, draft *domain.OrderDraft, method domain.PaymentMethod, address domain.Address) (*domain.Order, error)
	PlaceOrder(ctx context.Context, checkout *domain.Checkout) (*domain.Order, error)

	GetOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, page domain.Page) (*domain.OrderList, error)
	ListOrdersByCustomer(ctx context.Context, customerID string, page domain.Page) (*domain.OrderList, error)
	ListOrdersBySeller(ctx context.Context, sellerID string, page domain.Page) (*domain.OrderList, error)

	// CancelOrder returns the cancelled order together with ErrPartialCommit
	// when some stock could not be restored.
	CancelOrder(ctx context.Context, orderID string, customerID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, orderID string, patch domain.StatusPatch) (*domain.Order, error)
	UpdateRefund(ctx context.Context, actor domain.Actor, orderID string, patch domain.RefundPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, actor domain.Actor, orderID string) error
}
