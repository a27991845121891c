package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

func (or *Repository) FindProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	statement := or.db.QueryBuilder.
		Select("id", "seller_id", "name", "price", "stock", "sold").
		From("products").
		Where(sq.Eq{"id": ids})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Product, 0, len(ids))
	for rows.Next() {
		p := domain.Product{}
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Price, &p.Stock, &p.Sold); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}

	return list, rows.Err()
}

// ApplyStockDelta moves stock and sold in one statement guarded by the
// non-negative condition, so concurrent checkouts cannot oversell.
func (or *Repository) ApplyStockDelta(ctx context.Context, productID string, stockDelta, soldDelta int64) (bool, error) {
	statement := or.db.QueryBuilder.Update("products").
		Set("stock", sq.Expr("stock + ?", stockDelta)).
		Set("sold", sq.Expr("sold + ?", soldDelta)).
		Where(sq.Eq{"id": productID}).
		Where("stock + ? >= 0", stockDelta).
		Where("sold + ? >= 0", soldDelta)

	sql, args, err := statement.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := or.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (or *Repository) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	sql, args, err := or.db.QueryBuilder.Insert("products").
		Columns("id", "seller_id", "name", "price", "stock", "sold").
		Values(p.ID, p.SellerID, p.Name, p.Price, p.Stock, p.Sold).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := or.db.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return p, nil
}

func (or *Repository) FindCouponByName(ctx context.Context, name string) (*domain.Coupon, error) {
	statement := or.db.QueryBuilder.
		Select("id", "name", "discount_percent", "is_active", "expires_at").
		From("coupons").
		Where(sq.Eq{"name": name})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	c := domain.Coupon{}
	err = or.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.DiscountPercent, &c.IsActive, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (or *Repository) CreateCoupon(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	sql, args, err := or.db.QueryBuilder.Insert("coupons").
		Columns("id", "name", "discount_percent", "is_active", "expires_at").
		Values(c.ID, c.Name, c.DiscountPercent, c.IsActive, c.ExpiresAt).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := or.db.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return c, nil
}

// IncrementOrderCount bumps the customer's order counter, creating the
// account row on first use.
func (or *Repository) IncrementOrderCount(ctx context.Context, customerID string) error {
	sql, args, err := or.db.QueryBuilder.Insert("users").
		Columns("id", "role", "order_count").
		Values(customerID, domain.RoleCustomer, 1).
		Suffix("ON CONFLICT (id) DO UPDATE SET order_count = users.order_count + 1").
		ToSql()
	if err != nil {
		return err
	}

	_, err = or.db.Exec(ctx, sql, args...)
	return err
}

func (or *Repository) OrderCount(ctx context.Context, customerID string) (int64, error) {
	sql, args, err := or.db.QueryBuilder.Select("order_count").From("users").
		Where(sq.Eq{"id": customerID}).ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	err = or.db.QueryRow(ctx, sql, args...).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
