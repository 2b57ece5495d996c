package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, customer_email, customer_name, status,
		summary_json, shipping_json, billing_json, payment_json, lines_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	backfillOrderNumberSQL = `UPDATE orders SET order_number = $2
		WHERE id = $1 AND order_number IS NULL`

	clearCartItemsSQL = `DELETE FROM cart_items WHERE user_id = $1`

	getOrderByIDSQL = `SELECT id, order_number, user_id, customer_email, customer_name, status,
		summary_json, shipping_json, billing_json, payment_json, lines_json, created_at
		FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, order_number, user_id, customer_email, customer_name, status,
		summary_json, shipping_json, billing_json, payment_json, lines_json, created_at
		FROM orders WHERE user_id = $1 ORDER BY id DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The insert, the order-number backfill derived
// from the generated id, and the buyer's cart clearing all commit in one
// transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, clearCartForUser string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order create: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.CustomerEmail, o.CustomerName, o.Status,
		o.SummaryJSON, o.ShippingJSON, o.BillingJSON, o.PaymentJSON, o.LinesJSON,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	if o.Number == "" {
		o.Number = order.Number(o.ID)
	}
	if _, err := tx.Exec(ctx, backfillOrderNumberSQL, o.ID, o.Number); err != nil {
		return fmt.Errorf("backfilling order number: %w", err)
	}

	if clearCartForUser != "" {
		if _, err := tx.Exec(ctx, clearCartItemsSQL, clearCartForUser); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order create: %w", err)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus replaces the free-text status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("updating status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		number *string
	)
	err := row.Scan(
		&o.ID, &number, &o.UserID, &o.CustomerEmail, &o.CustomerName, &o.Status,
		&o.SummaryJSON, &o.ShippingJSON, &o.BillingJSON, &o.PaymentJSON, &o.LinesJSON,
		&o.CreatedAt,
	)
	if number != nil {
		o.Number = *number
	}
	return o, err
}
