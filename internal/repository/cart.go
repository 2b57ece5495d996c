package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	listCartItemsSQL = `SELECT product_id, name, variant_id, sku, variant_label,
		quantity, unit_price, tax_rate, added_at
		FROM cart_items WHERE user_id = $1 ORDER BY added_at`

	putCartItemSQL = `INSERT INTO cart_items (user_id, product_id, name, variant_id, sku, variant_label,
		quantity, unit_price, tax_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, product_id, variant_id) DO UPDATE SET
			quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price,
			tax_rate = EXCLUDED.tax_rate`

	removeCartItemSQL = `DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND variant_id = $3`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Each cart
// line is its own row keyed by (user, product, variant).
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetActive returns the user's cart. A user with no rows gets cart.ErrNotFound.
func (r *CartRepository) GetActive(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, listCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items of %q: %w", userID, err)
	}
	items, err := pgx.CollectRows(rows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("listing cart items of %q: %w", userID, err)
	}
	if len(items) == 0 {
		return nil, cart.ErrNotFound
	}

	c := &cart.Cart{UserID: userID, Items: items}
	for _, it := range items {
		if it.AddedAt.After(c.UpdatedAt) {
			c.UpdatedAt = it.AddedAt
		}
	}
	return c, nil
}

// PutItem inserts or replaces a cart line.
func (r *CartRepository) PutItem(ctx context.Context, userID string, item cart.Item) error {
	_, err := r.pool.Exec(ctx, putCartItemSQL,
		userID, item.ProductID, item.Name, item.VariantID, item.SKU, item.VariantLabel,
		item.Quantity, item.UnitPrice, item.TaxRate,
	)
	if err != nil {
		return fmt.Errorf("putting cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes one cart line.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID string, variantID int64) error {
	_, err := r.pool.Exec(ctx, removeCartItemSQL, userID, productID, variantID)
	if err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	return nil
}

// Clear deletes all of the user's cart lines. Order placement clears the
// cart inside its own transaction instead of calling this.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearCartItemsSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart of %q: %w", userID, err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var (
		it      cart.Item
		addedAt time.Time
	)
	err := row.Scan(
		&it.ProductID, &it.Name, &it.VariantID, &it.SKU, &it.VariantLabel,
		&it.Quantity, &it.UnitPrice, &it.TaxRate, &addedAt,
	)
	it.AddedAt = addedAt
	return it, err
}
