package domain

import "time"

var statusEdges = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped},
	OrderStatusShipped: {OrderStatusDelivered},
}

var refundEdges = map[RefundProcess][]RefundProcess{
	RefundProcessing: {RefundInitiated, RefundCancelled},
	RefundInitiated:  {RefundDone, RefundCancelled},
}

// CheckStatusTransition validates a fulfilment move made by a seller or admin.
// Cancellation and the refund states are reached through their own operations.
func CheckStatusTransition(from, to OrderStatus) error {
	if !to.Valid() {
		return NewValidationError("unknown order status %q", to)
	}
	if from == to {
		return nil
	}
	for _, s := range statusEdges[from] {
		if s == to {
			return nil
		}
	}
	return &StateError{Action: "move to " + string(to), Status: string(from)}
}

func (o *Order) CanTransition(to OrderStatus) bool {
	return CheckStatusTransition(o.Status, to) == nil
}

// CheckRefundTransition validates a move of the refund sub-flow.
func CheckRefundTransition(from, to RefundProcess) error {
	if !to.Valid() {
		return NewValidationError("unknown refund process %q", to)
	}
	if from == RefundNone {
		return &StateError{Action: "update refund of", Status: "no refund in progress"}
	}
	if from == to {
		return nil
	}
	for _, r := range refundEdges[from] {
		if r == to {
			return nil
		}
	}
	return &StateError{Action: "move refund to " + string(to), Status: string(from)}
}

type StatusPatch struct {
	Status        *OrderStatus
	RefundProcess *RefundProcess
	RefundMessage *string
}

type RefundPatch struct {
	RefundProcess *RefundProcess
	RefundMessage *string
	Status        *OrderStatus
}

func (p RefundPatch) empty() bool {
	return p.RefundProcess == nil && p.RefundMessage == nil && p.Status == nil
}

// ApplyStatus patches fulfilment fields. Refund fields in the patch follow
// the refund rules.
func (o *Order) ApplyStatus(p StatusPatch, now time.Time) error {
	if p.Status == nil && p.RefundProcess == nil && p.RefundMessage == nil {
		return NewValidationError("nothing to update")
	}
	if p.Status != nil {
		if err := CheckStatusTransition(o.Status, *p.Status); err != nil {
			return err
		}
	}
	if p.RefundProcess != nil || p.RefundMessage != nil {
		if err := o.applyRefund(p.RefundProcess, p.RefundMessage, now); err != nil {
			return err
		}
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	o.UpdatedAt = now
	return nil
}

var refundStatuses = map[OrderStatus]bool{
	OrderStatusCancelled: true,
	OrderStatusRefund:    true,
	OrderStatusRefunded:  true,
}

// ApplyRefund patches the refund sub-flow of a cancelled prepaid order.
func (o *Order) ApplyRefund(p RefundPatch, now time.Time) error {
	if p.empty() {
		return NewValidationError("nothing to update")
	}
	if o.RefundProcess == RefundNone {
		return &StateError{Action: "update refund of", Status: string(o.Status)}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return NewValidationError("unknown order status %q", *p.Status)
		}
		if !refundStatuses[*p.Status] {
			return &StateError{Action: "move to " + string(*p.Status) + " via refund", Status: string(o.Status)}
		}
	}

	next := o.RefundProcess
	if p.RefundProcess != nil {
		next = *p.RefundProcess
	}
	if p.Status != nil && *p.Status == OrderStatusRefunded && next != RefundDone {
		return &StateError{Action: "mark as refunded", Status: string(o.Status)}
	}

	if err := o.applyRefund(p.RefundProcess, p.RefundMessage, now); err != nil {
		return err
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	o.UpdatedAt = now
	return nil
}

func (o *Order) applyRefund(process *RefundProcess, message *string, now time.Time) error {
	if process != nil {
		if err := CheckRefundTransition(o.RefundProcess, *process); err != nil {
			return err
		}
		if *process != o.RefundProcess {
			t := now
			o.RefundTime = &t
		}
		o.RefundProcess = *process
	} else if o.RefundProcess == RefundNone {
		return &StateError{Action: "update refund message of", Status: string(o.Status)}
	}
	if message != nil {
		o.RefundMessage = *message
	}
	return nil
}
