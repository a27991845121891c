package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")
	ErrValidation = errors.New("validation failed")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrForbidden                  = errors.New("user is forbidden to access the resource")

	// * Business errors.
	ErrProductsNotFound  = fmt.Errorf("%w: one or more products not found", ErrDataNotFound)
	ErrOrderNotFound     = fmt.Errorf("%w: order not found", ErrDataNotFound)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCouponInvalid     = errors.New("coupon is invalid")
	ErrInvalidState      = errors.New("invalid order state")
	ErrPartialCommit     = errors.New("order partially committed")
)

// StockError reports a line whose requested quantity exceeds the stock.
type StockError struct {
	ProductID string
	Name      string
	Available int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s): available %d, requested %d",
		e.Name, e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// StateError reports an operation refused because of the current order state.
type StateError struct {
	Action string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s order with status: %s", e.Action, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// PartialCommitError is returned when stock mutations could not be undone
// after a failed commit or a cancellation.
type PartialCommitError struct {
	OrderID string
	Cause   error
	Failed  []string
}

func (e *PartialCommitError) Error() string {
	msg := fmt.Sprintf("order %s left partially applied", e.OrderID)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if len(e.Failed) > 0 {
		msg += " (unreverted: " + strings.Join(e.Failed, "; ") + ")"
	}
	return msg
}

func (e *PartialCommitError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPartialCommit}
	}
	return []error{ErrPartialCommit, e.Cause}
}

func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func couponError(reason string) error {
	return fmt.Errorf("%w: %s", ErrCouponInvalid, reason)
}
