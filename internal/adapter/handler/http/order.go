package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.OrderService
}

func NewOrderHandler(service port.OrderService, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type cartLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

type addressRequest struct {
	House    string `json:"house"`
	Street   string `json:"street"`
	Landmark string `json:"landmark"`
	Pincode  string `json:"pincode"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

type createOrderRequest struct {
	Items         []cartLineRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode    string            `json:"coupon_code"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Address       addressRequest    `json:"address"`
}

type orderItemResponse struct {
	ProductID string      `json:"product_id"`
	SellerID  string      `json:"seller_id"`
	UnitPrice jsonDecimal `json:"unit_price"`
	Quantity  int64       `json:"quantity"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	Items          []orderItemResponse `json:"items"`
	CouponID       string              `json:"coupon_id,omitempty"`
	TotalPrice     jsonDecimal         `json:"total_price"`
	DiscountAmount jsonDecimal         `json:"discount_amount"`
	FinalPrice     jsonDecimal         `json:"final_price"`
	PaymentMethod  string              `json:"payment_method"`
	Address        addressRequest      `json:"address"`
	Status         string              `json:"status"`
	RefundProcess  string              `json:"refund_process,omitempty"`
	RefundTime     *time.Time          `json:"refund_time,omitempty"`
	RefundMessage  string              `json:"refund_message,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: i.ProductID,
			SellerID:  i.SellerID,
			UnitPrice: jsonDecimal(i.UnitPrice),
			Quantity:  i.Quantity,
		})
	}
	return orderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Items:          items,
		CouponID:       o.CouponID,
		TotalPrice:     jsonDecimal(o.TotalPrice),
		DiscountAmount: jsonDecimal(o.DiscountAmount),
		FinalPrice:     jsonDecimal(o.FinalPrice),
		PaymentMethod:  string(o.PaymentMethod),
		Address:        addressRequest(o.Address),
		Status:         string(o.Status),
		RefundProcess:  string(o.RefundProcess),
		RefundTime:     o.RefundTime,
		RefundMessage:  o.RefundMessage,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

type createOrderResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	req := createOrderRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	lines := make([]domain.CartLine, 0, len(req.Items))
	for _, i := range req.Items {
		lines = append(lines, domain.CartLine{ProductID: i.ProductID, Quantity: i.Quantity})
	}

	order, err := oh.service.PlaceOrder(ctx.Request.Context(), &domain.Checkout{
		CustomerID:    getAuthPayload(ctx).UserID,
		Lines:         lines,
		CouponCode:    req.CouponCode,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Address:       domain.Address(req.Address),
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, createOrderResponse{
		Message: "Order placed successfully",
		Order:   newOrderResponse(order),
	}, http.StatusCreated)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	order, err := oh.service.GetOrder(ctx.Request.Context(), getActor(ctx), ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResponse(order))
}

type pageRequest struct {
	Page  int64 `form:"page"`
	Limit int64 `form:"limit"`
}

type paginationResponse struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type orderListResponse struct {
	Orders     []orderResponse    `json:"orders"`
	Pagination paginationResponse `json:"pagination"`
}

func newOrderListResponse(list *domain.OrderList) orderListResponse {
	orders := make([]orderResponse, 0, len(list.Orders))
	for _, o := range list.Orders {
		orders = append(orders, newOrderResponse(o))
	}
	return orderListResponse{
		Orders:     orders,
		Pagination: paginationResponse(list.Pagination),
	}
}

type listFunc func(ctx *gin.Context, page domain.Page) (*domain.OrderList, error)

func (oh *OrderHandler) list(ctx *gin.Context, fn listFunc) {
	req := pageRequest{}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	list, err := fn(ctx, domain.Page{Number: req.Page, Limit: req.Limit})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderListResponse(list))
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	oh.list(ctx, func(ctx *gin.Context, page domain.Page) (*domain.OrderList, error) {
		return oh.service.ListOrders(ctx.Request.Context(), page)
	})
}

func (oh *OrderHandler) ListMyOrders(ctx *gin.Context) {
	oh.list(ctx, func(ctx *gin.Context, page domain.Page) (*domain.OrderList, error) {
		return oh.service.ListOrdersByCustomer(ctx.Request.Context(), getAuthPayload(ctx).UserID, page)
	})
}

func (oh *OrderHandler) ListSellerOrders(ctx *gin.Context) {
	oh.list(ctx, func(ctx *gin.Context, page domain.Page) (*domain.OrderList, error) {
		return oh.service.ListOrdersBySeller(ctx.Request.Context(), getAuthPayload(ctx).UserID, page)
	})
}

type orderMessageResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	order, err := oh.service.CancelOrder(ctx.Request.Context(), ctx.Param("id"), getAuthPayload(ctx).UserID)
	if err != nil && order != nil && errors.Is(err, domain.ErrPartialCommit) {
		oh.logger.Error("order cancelled with unrestored stock", zap.String("order", order.ID), zap.Error(err))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError,
			orderMessageResponse{Message: err.Error(), Order: newOrderResponse(order)})
		return
	}
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, orderMessageResponse{Message: "Order cancelled successfully", Order: newOrderResponse(order)})
}

type statusRequest struct {
	Status        *string `json:"status"`
	RefundProcess *string `json:"refund_process"`
	RefundMessage *string `json:"refund_message"`
}

func (r statusRequest) empty() bool {
	return r.Status == nil && r.RefundProcess == nil && r.RefundMessage == nil
}

func (r statusRequest) status() *domain.OrderStatus {
	if r.Status == nil {
		return nil
	}
	s := domain.OrderStatus(*r.Status)
	return &s
}

func (r statusRequest) refundProcess() *domain.RefundProcess {
	if r.RefundProcess == nil {
		return nil
	}
	p := domain.RefundProcess(*r.RefundProcess)
	return &p
}

func (oh *OrderHandler) bindStatus(ctx *gin.Context) (statusRequest, bool) {
	req := statusRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return req, false
	}
	if req.empty() {
		oh.handleError(ctx, domain.NewValidationError("nothing to update"))
		return req, false
	}
	return req, true
}

func (oh *OrderHandler) UpdateStatus(ctx *gin.Context) {
	req, ok := oh.bindStatus(ctx)
	if !ok {
		return
	}

	order, err := oh.service.UpdateStatus(ctx.Request.Context(), getActor(ctx), ctx.Param("id"), domain.StatusPatch{
		Status:        req.status(),
		RefundProcess: req.refundProcess(),
		RefundMessage: req.RefundMessage,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, orderMessageResponse{Message: "Order status updated", Order: newOrderResponse(order)})
}

func (oh *OrderHandler) UpdateRefund(ctx *gin.Context) {
	req, ok := oh.bindStatus(ctx)
	if !ok {
		return
	}

	order, err := oh.service.UpdateRefund(ctx.Request.Context(), getActor(ctx), ctx.Param("id"), domain.RefundPatch{
		RefundProcess: req.refundProcess(),
		RefundMessage: req.RefundMessage,
		Status:        req.status(),
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, orderMessageResponse{Message: "Refund updated", Order: newOrderResponse(order)})
}

func (oh *OrderHandler) DeleteOrder(ctx *gin.Context) {
	err := oh.service.DeleteOrder(ctx.Request.Context(), getActor(ctx), ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, messageResponse{Message: "Order deleted successfully"})
}
