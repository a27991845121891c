package domain

import "github.com/govalues/decimal"

type Product struct {
	ID       string
	SellerID string
	Name     string
	Price    decimal.Decimal
	Stock    int64
	Sold     int64
}
