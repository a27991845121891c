package domain

import (
	"strings"
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRefund    OrderStatus = "refund"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCancelled,
		OrderStatusDelivered, OrderStatusRefund, OrderStatusRefunded:
		return true
	}
	return false
}

type RefundProcess string

const (
	RefundNone       RefundProcess = ""
	RefundProcessing RefundProcess = "processing"
	RefundInitiated  RefundProcess = "initiated"
	RefundCancelled  RefundProcess = "cancelled"
	RefundDone       RefundProcess = "done"
)

func (r RefundProcess) Valid() bool {
	switch r {
	case RefundProcessing, RefundInitiated, RefundCancelled, RefundDone:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CashOnDelivery"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentCreditCard     PaymentMethod = "CreditCard"
	PaymentDebitCard      PaymentMethod = "DebitCard"
	PaymentEMI            PaymentMethod = "EMI"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentUPI, PaymentCreditCard, PaymentDebitCard, PaymentEMI:
		return true
	}
	return false
}

// RefundNotice is attached to prepaid orders cancelled by the customer.
const RefundNotice = "Your refund will be credited to the original payment method within 7 working days."

type Address struct {
	House    string
	Street   string
	Landmark string
	Pincode  string
	City     string
	State    string
	Country  string
}

func (a Address) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"house", a.House},
		{"street", a.Street},
		{"pincode", a.Pincode},
		{"city", a.City},
		{"state", a.State},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewValidationError("address %s is required", r.field)
		}
	}
	return nil
}

// OrderItem is a line captured at checkout; UnitPrice never follows later
// catalog changes.
type OrderItem struct {
	ProductID string
	SellerID  string
	UnitPrice decimal.Decimal
	Quantity  int64
}

type Order struct {
	ID             string
	CustomerID     string
	Items          []OrderItem
	CouponID       string
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	PaymentMethod  PaymentMethod
	Address        Address
	Status         OrderStatus
	RefundProcess  RefundProcess
	RefundTime     *time.Time
	RefundMessage  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasSeller reports whether any line of the order belongs to the seller.
func (o *Order) HasSeller(sellerID string) bool {
	for _, i := range o.Items {
		if i.SellerID == sellerID {
			return true
		}
	}
	return false
}

// VisibleTo reports whether the actor may read the order.
func (o *Order) VisibleTo(a Actor) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleSeller:
		return o.HasSeller(a.ID)
	case RoleCustomer:
		return o.CustomerID == a.ID
	}
	return false
}

// Cancel moves a pending order to cancelled on behalf of its owner.
func (o *Order) Cancel(customerID string, now time.Time) error {
	if o.CustomerID != customerID {
		return ErrForbidden
	}
	if o.Status != OrderStatusPending {
		return &StateError{Action: "cancel", Status: string(o.Status)}
	}
	o.Status = OrderStatusCancelled
	if o.PaymentMethod != PaymentCashOnDelivery {
		t := now
		o.RefundProcess = RefundProcessing
		o.RefundTime = &t
		o.RefundMessage = RefundNotice
	}
	o.UpdatedAt = now
	return nil
}

// CartLine is one client-submitted line of a cart.
type CartLine struct {
	ProductID string
	Quantity  int64
}

// Checkout is everything a customer submits to place an order.
type Checkout struct {
	CustomerID    string
	Lines         []CartLine
	CouponCode    string
	PaymentMethod PaymentMethod
	Address       Address
}

// OrderDraft is a priced, validated cart that is not persisted yet.
type OrderDraft struct {
	CustomerID string
	Items      []OrderItem
	Pricing    Pricing
	CouponID   string
}

type OrderFilter struct {
	CustomerID string
	SellerID   string
}

type OrderList struct {
	Orders     []*Order
	Pagination Pagination
}
