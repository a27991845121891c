package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type Coupon struct {
	ID              string
	Name            string
	DiscountPercent decimal.Decimal
	IsActive        bool
	ExpiresAt       *time.Time
}

// Validate reports why the coupon cannot be used at the given moment.
func (c *Coupon) Validate(now time.Time) error {
	if !c.IsActive {
		return couponError("coupon " + c.Name + " is not active")
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return couponError("coupon " + c.Name + " has expired")
	}
	if c.DiscountPercent.IsNeg() || c.DiscountPercent.Cmp(decimal.Hundred) > 0 {
		return couponError("coupon " + c.Name + " has an invalid discount")
	}
	return nil
}

// CouponNotFound is the error for an unknown coupon code.
func CouponNotFound(name string) error {
	return couponError("coupon " + name + " not found")
}
