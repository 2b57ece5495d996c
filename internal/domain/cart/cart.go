package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a user has no active cart.
var ErrNotFound = errors.New("cart not found")

// Item is a cart line. UnitPrice is captured at add time so the cart keeps
// showing what the buyer saw, even if the catalog price changes later.
type Item struct {
	ProductID    string
	Name         string
	VariantID    int64
	SKU          string
	VariantLabel string
	Quantity     int
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	AddedAt      time.Time
}

// Cart is a user's active cart.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

// Subtotal returns the scale-2 sum of item prices times quantities.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// Repository defines persistence operations for active carts. Clearing a cart
// as part of order placement goes through order.Repository.Create instead,
// which runs it inside the order transaction.
type Repository interface {
	GetActive(ctx context.Context, userID string) (*Cart, error)
	PutItem(ctx context.Context, userID string, item Item) error
	RemoveItem(ctx context.Context, userID, productID string, variantID int64) error
	Clear(ctx context.Context, userID string) error
}
