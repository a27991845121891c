package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventCancelled     OrderEventType = "order.cancelled"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventRefundUpdated OrderEventType = "order.refund_updated"
	OrderEventDeleted       OrderEventType = "order.deleted"
)

type OrderEvent struct {
	Type          OrderEventType
	OrderID       string
	CustomerID    string
	Status        OrderStatus
	RefundProcess RefundProcess
	FinalPrice    decimal.Decimal
	// Unrestored lists cancelled lines whose stock could not be put back.
	Unrestored    []CartLine
	OccurredAt    time.Time
}

func NewOrderEvent(t OrderEventType, o *Order, now time.Time) *OrderEvent {
	return &OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		Status:        o.Status,
		RefundProcess: o.RefundProcess,
		FinalPrice:    o.FinalPrice,
		OccurredAt:    now,
	}
}
