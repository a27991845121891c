package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/storefront/internal/adapter/storage"
	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	db *storage.DB
}

var (
	_ port.OrderRepository  = (*Repository)(nil)
	_ port.CatalogStore     = (*Repository)(nil)
	_ port.CouponStore      = (*Repository)(nil)
	_ port.UserAccountStore = (*Repository)(nil)
)

func NewRepository(db *storage.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("repository: db is nil")
	}
	return &Repository{db: db}, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

var orderColumns = []string{
	"id", "customer_id", "coupon_id",
	"total_price", "discount_amount", "final_price", "payment_method",
	"house", "street", "landmark", "pincode", "city", "state", "country",
	"status", "refund_process", "refund_time", "refund_message",
	"created_at", "updated_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := domain.Order{}
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CouponID,
		&o.TotalPrice, &o.DiscountAmount, &o.FinalPrice, &o.PaymentMethod,
		&o.Address.House, &o.Address.Street, &o.Address.Landmark, &o.Address.Pincode,
		&o.Address.City, &o.Address.State, &o.Address.Country,
		&o.Status, &o.RefundProcess, &o.RefundTime, &o.RefundMessage,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	a := order.Address
	orderSt := or.db.QueryBuilder.Insert("orders").
		Columns(orderColumns...).
		Values(order.ID, order.CustomerID, order.CouponID,
			order.TotalPrice, order.DiscountAmount, order.FinalPrice, order.PaymentMethod,
			a.House, a.Street, a.Landmark, a.Pincode, a.City, a.State, a.Country,
			order.Status, order.RefundProcess, order.RefundTime, order.RefundMessage,
			order.CreatedAt, order.UpdatedAt)

	itemsSt := or.db.QueryBuilder.Insert("order_items").
		Columns("order_id", "position", "product_id", "seller_id", "unit_price", "quantity")
	for i, item := range order.Items {
		itemsSt = itemsSt.Values(order.ID, i, item.ProductID, item.SellerID, item.UnitPrice, item.Quantity)
	}

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		if len(order.Items) == 0 {
			return nil
		}
		sql, args, err = itemsSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (or *Repository) ReadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return or.readOrder(ctx, or.db, orderID, false)
}

func (or *Repository) readOrder(ctx context.Context, q querier, orderID string, lock bool) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})
	if lock {
		statement = statement.Suffix("FOR UPDATE")
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	items, err := or.readItems(ctx, q, []string{orderID})
	if err != nil {
		return nil, err
	}
	order.Items = items[orderID]

	return order, nil
}

// readItems loads the lines of the given orders keyed by order id.
func (or *Repository) readItems(ctx context.Context, q querier, orderIDs []string) (map[string][]domain.OrderItem, error) {
	statement := or.db.QueryBuilder.
		Select("order_id", "product_id", "seller_id", "unit_price", "quantity").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		item := domain.OrderItem{}
		if err := rows.Scan(&orderID, &item.ProductID, &item.SellerID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}

	return items, rows.Err()
}

func (or *Repository) UpdateOrder(ctx context.Context, orderID string,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	var order *domain.Order

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		var err error
		order, err = or.readOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		if err := updateFn(order); err != nil {
			return err
		}

		statement := or.db.QueryBuilder.Update("orders").
			Set("status", order.Status).
			Set("refund_process", order.RefundProcess).
			Set("refund_time", order.RefundTime).
			Set("refund_message", order.RefundMessage).
			Set("updated_at", order.UpdatedAt).
			Where(sq.Eq{"id": order.ID})

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func applyFilter(b sq.SelectBuilder, filter domain.OrderFilter) sq.SelectBuilder {
	if filter.CustomerID != "" {
		b = b.Where(sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.SellerID != "" {
		b = b.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.seller_id = ?)",
			filter.SellerID))
	}
	return b
}

func (or *Repository) ListOrders(ctx context.Context, filter domain.OrderFilter,
	page domain.Page) ([]*domain.Order, int64, error) {
	countSt := applyFilter(or.db.QueryBuilder.Select("count(*)").From("orders"), filter)
	sql, args, err := countSt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := or.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	statement := applyFilter(or.db.QueryBuilder.Select(orderColumns...).From("orders"), filter).
		OrderBy("created_at DESC", "id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))

	sql, args, err = statement.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	list := make([]*domain.Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		list = append(list, order)
		ids = append(ids, order.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) == 0 {
		return list, total, nil
	}
	items, err := or.readItems(ctx, or.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}

	return list, total, nil
}

func (or *Repository) DeleteOrder(ctx context.Context, orderID string) error {
	sql, args, err := or.db.QueryBuilder.Delete("orders").Where(sq.Eq{"id": orderID}).ToSql()
	if err != nil {
		return err
	}

	tag, err := or.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDataNotFound
	}
	return nil
}
