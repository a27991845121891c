package domain

import (
	"fmt"

	"github.com/govalues/decimal"
)

// MoneyScale is the number of fractional digits kept for discounts.
const MoneyScale = 2

type Pricing struct {
	Total    decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

// PriceItems sums the lines and applies the coupon percentage.
// The discount never exceeds the total and the final price is never negative.
func PriceItems(items []OrderItem, coupon *Coupon) (Pricing, error) {
	total := decimal.Zero
	for _, i := range items {
		if i.Quantity < 1 {
			return Pricing{}, NewValidationError("quantity for product %s must be at least 1", i.ProductID)
		}
		if i.UnitPrice.IsNeg() {
			return Pricing{}, NewValidationError("price for product %s is negative", i.ProductID)
		}
		qty, err := decimal.New(i.Quantity, 0)
		if err != nil {
			return Pricing{}, fmt.Errorf("quantity for product %s: %w", i.ProductID, err)
		}
		line, err := i.UnitPrice.Mul(qty)
		if err != nil {
			return Pricing{}, fmt.Errorf("line price for product %s: %w", i.ProductID, err)
		}
		total, err = total.Add(line)
		if err != nil {
			return Pricing{}, fmt.Errorf("order total: %w", err)
		}
	}

	discount := decimal.Zero
	if coupon != nil {
		d, err := total.Mul(coupon.DiscountPercent)
		if err != nil {
			return Pricing{}, fmt.Errorf("discount: %w", err)
		}
		d, err = d.Quo(decimal.Hundred)
		if err != nil {
			return Pricing{}, fmt.Errorf("discount: %w", err)
		}
		discount = d.Round(MoneyScale).Min(total).Max(decimal.Zero)
	}

	final, err := total.Sub(discount)
	if err != nil {
		return Pricing{}, fmt.Errorf("final price: %w", err)
	}

	return Pricing{
		Total:    total,
		Discount: discount,
		Final:    final.Max(decimal.Zero),
	}, nil
}
