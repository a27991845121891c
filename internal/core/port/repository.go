package port

import (
	"context"

	"github.com/MikeRez0/storefront/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

// CatalogStore is the product side of checkout.
type CatalogStore interface {
	FindProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	// ApplyStockDelta adds the deltas to stock and sold in one conditional
	// write. It reports false, without changing anything, when the product is
	// missing or either counter would fall below zero.
	ApplyStockDelta(ctx context.Context, productID string, stockDelta, soldDelta int64) (bool, error)
}

type CouponStore interface {
	// FindCouponByName returns domain.ErrDataNotFound for unknown names.
	FindCouponByName(ctx context.Context, name string) (*domain.Coupon, error)
}

type UserAccountStore interface {
	IncrementOrderCount(ctx context.Context, customerID string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateOrder runs updateFn against the locked order and persists its
	// mutable fields. Nothing is written when updateFn fails.
	UpdateOrder(ctx context.Context, orderID string, updateFn UpdateOrderFn) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]*domain.Order, int64, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type UpdateOrderFn func(*domain.Order) error
