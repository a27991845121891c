package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/MikeRez0/storefront/internal/core/port/mock"
	"github.com/MikeRez0/storefront/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mocks struct {
	orders  *mock.MockOrderRepository
	catalog *mock.MockCatalogStore
	coupons *mock.MockCouponStore
	users   *mock.MockUserAccountStore
	events  *mock.MockEventPublisher
	journal *mock.MockCommitJournal
}

type prepareMocks func(m *mocks)

func newMocks(ctrl *gomock.Controller) *mocks {
	return &mocks{
		orders:  mock.NewMockOrderRepository(ctrl),
		catalog: mock.NewMockCatalogStore(ctrl),
		coupons: mock.NewMockCouponStore(ctrl),
		users:   mock.NewMockUserAccountStore(ctrl),
		events:  mock.NewMockEventPublisher(ctrl),
		journal: mock.NewMockCommitJournal(ctrl),
	}
}

func newService(t *testing.T, m *mocks) *service.Service {
	t.Helper()
	s, err := service.NewService(service.Stores{
		Orders:  m.orders,
		Catalog: m.catalog,
		Coupons: m.coupons,
		Users:   m.users,
	}, m.events, m.journal, zap.NewNop())
	require.NoError(t, err)
	return s
}

var address = domain.Address{
	House:   "12",
	Street:  "Main st",
	Pincode: "560001",
	City:    "Bengaluru",
	State:   "KA",
	Country: "IN",
}

func products() []*domain.Product {
	return []*domain.Product{
		{ID: "p1", SellerID: "s1", Name: "Kettle", Price: decimal.MustParse("19.99"), Stock: 10},
		{ID: "p2", SellerID: "s2", Name: "Mug", Price: decimal.MustParse("5.50"), Stock: 3},
	}
}

func TestNewService(t *testing.T) {
	_, err := service.NewService(service.Stores{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestService_ResolveCart(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	type resolveCartTest struct {
		name     string
		lines    []domain.CartLine
		coupon   string
		mock     prepareMocks
		expError error
		expTotal string
		expFinal string
	}

	tests := []resolveCartTest{
		{
			name:  "no coupon",
			lines: []domain.CartLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), []string{"p1", "p2"}).Return(products(), nil)
			},
			expTotal: "45.48",
			expFinal: "45.48",
		},
		{
			name:   "coupon applied",
			lines:  []domain.CartLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
			coupon: "SAVE10",
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products(), nil)
				m.coupons.EXPECT().FindCouponByName(gomock.Any(), "SAVE10").Return(&domain.Coupon{
					ID: "c1", Name: "SAVE10", DiscountPercent: decimal.MustParse("10"), IsActive: true, ExpiresAt: &future,
				}, nil)
			},
			expTotal: "45.48",
			expFinal: "40.93",
		},
		{
			name:  "duplicate lines merged",
			lines: []domain.CartLine{{ProductID: "p2", Quantity: 1}, {ProductID: "p2", Quantity: 2}},
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), []string{"p2"}).Return(products()[1:], nil)
			},
			expTotal: "16.50",
			expFinal: "16.50",
		},
		{
			name:     "empty cart",
			mock:     func(m *mocks) {},
			expError: domain.ErrValidation,
		},
		{
			name:     "zero quantity",
			lines:    []domain.CartLine{{ProductID: "p1", Quantity: 0}},
			mock:     func(m *mocks) {},
			expError: domain.ErrValidation,
		},
		{
			name:  "missing product",
			lines: []domain.CartLine{{ProductID: "p1", Quantity: 1}, {ProductID: "p9", Quantity: 1}},
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products()[:1], nil)
			},
			expError: domain.ErrDataNotFound,
		},
		{
			name:  "not enough stock",
			lines: []domain.CartLine{{ProductID: "p2", Quantity: 4}},
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products()[1:], nil)
			},
			expError: domain.ErrInsufficientStock,
		},
		{
			name:   "unknown coupon",
			lines:  []domain.CartLine{{ProductID: "p1", Quantity: 1}},
			coupon: "NOPE",
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products()[:1], nil)
				m.coupons.EXPECT().FindCouponByName(gomock.Any(), "NOPE").Return(nil, domain.ErrDataNotFound)
			},
			expError: domain.ErrCouponInvalid,
		},
		{
			name:   "expired coupon",
			lines:  []domain.CartLine{{ProductID: "p1", Quantity: 1}},
			coupon: "OLD",
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products()[:1], nil)
				m.coupons.EXPECT().FindCouponByName(gomock.Any(), "OLD").Return(&domain.Coupon{
					ID: "c2", Name: "OLD", DiscountPercent: decimal.MustParse("10"), IsActive: true, ExpiresAt: &past,
				}, nil)
			},
			expError: domain.ErrCouponInvalid,
		},
		{
			name:  "catalog failure",
			lines: []domain.CartLine{{ProductID: "p1", Quantity: 1}},
			mock: func(m *mocks) {
				m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expError: domain.ErrInternal,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newMocks(mockCtrl)
			test.mock(m)
			s := newService(t, m)

			draft, err := s.ResolveCart(context.Background(), "u1", test.lines, test.coupon)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, draft)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expTotal, draft.Pricing.Total.String())
			assert.Equal(t, test.expFinal, draft.Pricing.Final.String())
			assert.Equal(t, "u1", draft.CustomerID)
		})
	}
}

func TestService_ResolveCartSnapshotsSeller(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	m := newMocks(mockCtrl)
	m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), gomock.Any()).Return(products(), nil)
	s := newService(t, m)

	draft, err := s.ResolveCart(context.Background(), "u1",
		[]domain.CartLine{{ProductID: "p2", Quantity: 1}, {ProductID: "p1", Quantity: 1}}, "")
	require.NoError(t, err)
	require.Len(t, draft.Items, 2)
	assert.Equal(t, "p2", draft.Items[0].ProductID)
	assert.Equal(t, "s2", draft.Items[0].SellerID)
	assert.Equal(t, "5.50", draft.Items[0].UnitPrice.String())
}

func draft() *domain.OrderDraft {
	return &domain.OrderDraft{
		CustomerID: "u1",
		Items: []domain.OrderItem{
			{ProductID: "p1", SellerID: "s1", UnitPrice: decimal.MustParse("19.99"), Quantity: 2},
			{ProductID: "p2", SellerID: "s2", UnitPrice: decimal.MustParse("5.50"), Quantity: 1},
		},
		Pricing: domain.Pricing{
			Total:    decimal.MustParse("45.48"),
			Discount: decimal.Zero,
			Final:    decimal.MustParse("45.48"),
		},
	}
}

func TestService_CommitOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type commitOrderTest struct {
		name       string
		method     domain.PaymentMethod
		address    domain.Address
		mock       prepareMocks
		expError   error
		expJournal []domain.JournalStatus
	}

	echo := func(_ context.Context, o *domain.Order) (*domain.Order, error) { return o, nil }

	tests := []commitOrderTest{
		{
			name:    "committed",
			method:  domain.PaymentUPI,
			address: address,
			mock: func(m *mocks) {
				gomock.InOrder(
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(-2), int64(2)).Return(true, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(-1), int64(1)).Return(true, nil),
					m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(echo),
				)
				m.users.EXPECT().IncrementOrderCount(gomock.Any(), "u1").Return(nil)
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			expJournal: []domain.JournalStatus{
				domain.JournalStarted,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalCompleted,
			},
		},
		{
			name:    "order count failure is not fatal",
			method:  domain.PaymentCashOnDelivery,
			address: address,
			mock: func(m *mocks) {
				m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(true, nil).Times(2)
				m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(echo)
				m.users.EXPECT().IncrementOrderCount(gomock.Any(), "u1").Return(errors.New("db down"))
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			expJournal: []domain.JournalStatus{
				domain.JournalStarted,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalCompleted,
			},
		},
		{
			name:    "stock gone at commit",
			method:  domain.PaymentUPI,
			address: address,
			mock: func(m *mocks) {
				gomock.InOrder(
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(-2), int64(2)).Return(true, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(-1), int64(1)).Return(false, nil),
					m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), []string{"p2"}).
						Return([]*domain.Product{{ID: "p2", Name: "Mug", Stock: 0}}, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(true, nil),
				)
			},
			expError: domain.ErrInsufficientStock,
			expJournal: []domain.JournalStatus{
				domain.JournalStarted,
				domain.JournalStepDone,
				domain.JournalCompensating,
				domain.JournalAborted,
			},
		},
		{
			name:    "insert failure restores stock",
			method:  domain.PaymentUPI,
			address: address,
			mock: func(m *mocks) {
				gomock.InOrder(
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(-2), int64(2)).Return(true, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(-1), int64(1)).Return(true, nil),
					m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(1), int64(-1)).Return(true, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(true, nil),
				)
			},
			expError: domain.ErrInternal,
			expJournal: []domain.JournalStatus{
				domain.JournalStarted,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalCompensating,
				domain.JournalAborted,
			},
		},
		{
			name:    "failed compensation",
			method:  domain.PaymentUPI,
			address: address,
			mock: func(m *mocks) {
				gomock.InOrder(
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(-2), int64(2)).Return(true, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(-1), int64(1)).Return(true, nil),
					m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p2", int64(1), int64(-1)).Return(false, nil),
					m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(true, nil),
				)
			},
			expError: domain.ErrPartialCommit,
			expJournal: []domain.JournalStatus{
				domain.JournalStarted,
				domain.JournalStepDone,
				domain.JournalStepDone,
				domain.JournalCompensating,
				domain.JournalFailed,
			},
		},
		{
			name:     "unknown payment method",
			method:   "Barter",
			address:  address,
			mock:     func(m *mocks) {},
			expError: domain.ErrValidation,
		},
		{
			name:     "incomplete address",
			method:   domain.PaymentUPI,
			address:  domain.Address{House: "12"},
			mock:     func(m *mocks) {},
			expError: domain.ErrValidation,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newMocks(mockCtrl)
			test.mock(m)

			var journal []domain.JournalStatus
			m.journal.EXPECT().Save(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, e *domain.JournalEntry) error {
					journal = append(journal, e.Status)
					return nil
				}).AnyTimes()

			s := newService(t, m)
			order, err := s.CommitOrder(context.Background(), draft(), test.method, test.address)
			assert.Equal(t, test.expJournal, journal)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, order.ID)
			assert.Equal(t, domain.OrderStatusPending, order.Status)
			assert.Equal(t, test.method, order.PaymentMethod)
			assert.Equal(t, "45.48", order.FinalPrice.String())
		})
	}
}

func TestService_CommitOrderReportsStock(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	m := newMocks(mockCtrl)
	m.journal.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(-2), int64(2)).Return(false, nil)
	m.catalog.EXPECT().FindProductsByIDs(gomock.Any(), []string{"p1"}).
		Return([]*domain.Product{{ID: "p1", Name: "Kettle", Stock: 1}}, nil)

	s := newService(t, m)
	_, err := s.CommitOrder(context.Background(), draft(), domain.PaymentUPI, address)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.Available)
	assert.Equal(t, int64(2), stockErr.Requested)
}

func pendingOrder(method domain.PaymentMethod) *domain.Order {
	return &domain.Order{
		ID:            "o1",
		CustomerID:    "u1",
		PaymentMethod: method,
		Status:        domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "p1", SellerID: "s1", UnitPrice: decimal.MustParse("19.99"), Quantity: 2},
		},
	}
}

// applyTo makes the UpdateOrder mock run updateFn against a copy of o.
func applyTo(o *domain.Order) func(context.Context, string, port.UpdateOrderFn) (*domain.Order, error) {
	return func(_ context.Context, _ string, fn port.UpdateOrderFn) (*domain.Order, error) {
		c := *o
		if err := fn(&c); err != nil {
			return nil, err
		}
		return &c, nil
	}
}

func TestService_CancelOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type cancelOrderTest struct {
		name      string
		customer  string
		mock      prepareMocks
		expError  error
		expRefund domain.RefundProcess
	}

	tests := []cancelOrderTest{
		{
			name:     "prepaid order",
			customer: "u1",
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
				m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(true, nil)
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			expRefund: domain.RefundProcessing,
		},
		{
			name:     "cash on delivery",
			customer: "u1",
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentCashOnDelivery)))
				m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(true, nil)
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			expRefund: domain.RefundNone,
		},
		{
			name:     "someone else's order",
			customer: "u2",
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
			},
			expError: domain.ErrForbidden,
		},
		{
			name:     "already shipped",
			customer: "u1",
			mock: func(m *mocks) {
				o := pendingOrder(domain.PaymentUPI)
				o.Status = domain.OrderStatusShipped
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).DoAndReturn(applyTo(o))
			},
			expError: domain.ErrInvalidState,
		},
		{
			name:     "unknown order",
			customer: "u1",
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).Return(nil, domain.ErrDataNotFound)
			},
			expError: domain.ErrOrderNotFound,
		},
		{
			name:     "stock not restored",
			customer: "u1",
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
				m.catalog.EXPECT().ApplyStockDelta(gomock.Any(), "p1", int64(2), int64(-2)).Return(false, nil)
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *domain.OrderEvent) error {
						assert.Equal(t, domain.OrderEventCancelled, e.Type)
						assert.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 2}}, e.Unrestored)
						return nil
					})
			},
			expError: domain.ErrPartialCommit,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newMocks(mockCtrl)
			test.mock(m)
			s := newService(t, m)

			order, err := s.CancelOrder(context.Background(), "o1", test.customer)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				if errors.Is(err, domain.ErrPartialCommit) {
					require.NotNil(t, order)
					assert.Equal(t, domain.OrderStatusCancelled, order.Status)
				} else {
					assert.Nil(t, order)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, order.Status)
			assert.Equal(t, test.expRefund, order.RefundProcess)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	shipped := domain.OrderStatusShipped
	delivered := domain.OrderStatusDelivered

	type updateStatusTest struct {
		name      string
		actor     domain.Actor
		patch     domain.StatusPatch
		mock      prepareMocks
		expError  error
		expStatus domain.OrderStatus
	}

	tests := []updateStatusTest{
		{
			name:  "seller ships own order",
			actor: domain.Actor{ID: "s1", Role: domain.RoleSeller},
			patch: domain.StatusPatch{Status: &shipped},
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
				m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			expStatus: domain.OrderStatusShipped,
		},
		{
			name:  "admin repeats status",
			actor: domain.Actor{ID: "a1", Role: domain.RoleAdmin},
			patch: domain.StatusPatch{Status: &shipped},
			mock: func(m *mocks) {
				o := pendingOrder(domain.PaymentUPI)
				o.Status = domain.OrderStatusShipped
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).DoAndReturn(applyTo(o))
			},
			expStatus: domain.OrderStatusShipped,
		},
		{
			name:  "seller of other items",
			actor: domain.Actor{ID: "s9", Role: domain.RoleSeller},
			patch: domain.StatusPatch{Status: &shipped},
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
			},
			expError: domain.ErrForbidden,
		},
		{
			name:     "customer",
			actor:    domain.Actor{ID: "u1", Role: domain.RoleCustomer},
			patch:    domain.StatusPatch{Status: &shipped},
			mock:     func(m *mocks) {},
			expError: domain.ErrForbidden,
		},
		{
			name:  "skipping shipment",
			actor: domain.Actor{ID: "a1", Role: domain.RoleAdmin},
			patch: domain.StatusPatch{Status: &delivered},
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).
					DoAndReturn(applyTo(pendingOrder(domain.PaymentUPI)))
			},
			expError: domain.ErrInvalidState,
		},
		{
			name:  "storage failure",
			actor: domain.Actor{ID: "a1", Role: domain.RoleAdmin},
			patch: domain.StatusPatch{Status: &shipped},
			mock: func(m *mocks) {
				m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).Return(nil, errors.New("db down"))
			},
			expError: domain.ErrInternal,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newMocks(mockCtrl)
			test.mock(m)
			s := newService(t, m)

			order, err := s.UpdateStatus(context.Background(), test.actor, "o1", test.patch)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expStatus, order.Status)
		})
	}
}

func TestService_UpdateRefund(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	initiated := domain.RefundInitiated
	cancelled := domain.OrderStatusCancelled
	o := pendingOrder(domain.PaymentUPI)
	o.Status = cancelled
	o.RefundProcess = domain.RefundProcessing

	t.Run("admin", func(t *testing.T) {
		m := newMocks(mockCtrl)
		m.orders.EXPECT().UpdateOrder(gomock.Any(), "o1", gomock.Any()).DoAndReturn(applyTo(o))
		m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
		s := newService(t, m)

		order, err := s.UpdateRefund(context.Background(), domain.Actor{ID: "a1", Role: domain.RoleAdmin}, "o1",
			domain.RefundPatch{RefundProcess: &initiated})
		require.NoError(t, err)
		assert.Equal(t, domain.RefundInitiated, order.RefundProcess)
		assert.NotNil(t, order.RefundTime)
	})

	t.Run("seller", func(t *testing.T) {
		m := newMocks(mockCtrl)
		s := newService(t, m)

		_, err := s.UpdateRefund(context.Background(), domain.Actor{ID: "s1", Role: domain.RoleSeller}, "o1",
			domain.RefundPatch{RefundProcess: &initiated})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestService_GetOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	tests := []struct {
		name     string
		actor    domain.Actor
		expError error
	}{
		{name: "owner", actor: domain.Actor{ID: "u1", Role: domain.RoleCustomer}},
		{name: "seller of an item", actor: domain.Actor{ID: "s1", Role: domain.RoleSeller}},
		{name: "admin", actor: domain.Actor{ID: "a1", Role: domain.RoleAdmin}},
		{name: "other customer", actor: domain.Actor{ID: "u2", Role: domain.RoleCustomer}, expError: domain.ErrForbidden},
		{name: "other seller", actor: domain.Actor{ID: "s2", Role: domain.RoleSeller}, expError: domain.ErrForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := newMocks(mockCtrl)
			m.orders.EXPECT().ReadOrder(gomock.Any(), "o1").Return(pendingOrder(domain.PaymentUPI), nil)
			s := newService(t, m)

			order, err := s.GetOrder(context.Background(), test.actor, "o1")
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "o1", order.ID)
		})
	}

	t.Run("missing", func(t *testing.T) {
		m := newMocks(mockCtrl)
		m.orders.EXPECT().ReadOrder(gomock.Any(), "o9").Return(nil, domain.ErrDataNotFound)
		s := newService(t, m)

		_, err := s.GetOrder(context.Background(), domain.Actor{ID: "a1", Role: domain.RoleAdmin}, "o9")
		assert.Equal(t, domain.ErrOrderNotFound, err)
	})
}

func TestService_ListOrders(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	m := newMocks(mockCtrl)
	m.orders.EXPECT().ListOrders(gomock.Any(), domain.OrderFilter{SellerID: "s1"},
		domain.Page{Number: 1, Limit: domain.MaxPageLimit}).
		Return([]*domain.Order{pendingOrder(domain.PaymentUPI)}, int64(101), nil)
	m.orders.EXPECT().ListOrders(gomock.Any(), domain.OrderFilter{CustomerID: "u1"},
		domain.Page{Number: 2, Limit: domain.DefaultPageLimit}).
		Return(nil, int64(0), nil)
	s := newService(t, m)

	list, err := s.ListOrdersBySeller(context.Background(), "s1", domain.Page{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 100, Total: 101, Pages: 2}, list.Pagination)

	list, err = s.ListOrdersByCustomer(context.Background(), "u1", domain.Page{Number: 2})
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Empty(t, list.Orders)

	_, err = s.ListOrdersByCustomer(context.Background(), "", domain.Page{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_DeleteOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	m := newMocks(mockCtrl)
	m.orders.EXPECT().DeleteOrder(gomock.Any(), "o1").Return(nil)
	m.orders.EXPECT().DeleteOrder(gomock.Any(), "o9").Return(domain.ErrDataNotFound)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s := newService(t, m)

	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	assert.NoError(t, s.DeleteOrder(context.Background(), admin, "o1"))
	assert.Equal(t, domain.ErrOrderNotFound, s.DeleteOrder(context.Background(), admin, "o9"))
	assert.ErrorIs(t, s.DeleteOrder(context.Background(), domain.Actor{ID: "u1", Role: domain.RoleCustomer}, "o1"),
		domain.ErrForbidden)
}
