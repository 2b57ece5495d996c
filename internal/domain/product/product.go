package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
	Image    Image
	Variants []Variant
}

// Variant is a purchasable variation of a product (size, colour, bundle).
// PriceDelta is added to the product base price.
type Variant struct {
	ID         int64
	SKU        string
	Label      string
	PriceDelta decimal.Decimal
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// UnitPrice returns the effective unit price for the given variant ID.
// A zero variantID selects the base price.
func (p *Product) UnitPrice(variantID int64) (decimal.Decimal, error) {
	if variantID == 0 {
		return p.Price, nil
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return p.Price.Add(v.PriceDelta), nil
		}
	}
	return decimal.Zero, errors.Wrapf(ErrNotFound, "variant %d of product %s", variantID, p.ID)
}

// PlaceholderSKU derives the deterministic SKU assigned to a variant once its
// database identity is known.
func PlaceholderSKU(id int64) string {
	return fmt.Sprintf("SKU-%d", id+999)
}

// Repository defines catalog operations.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Upsert(ctx context.Context, p *Product) error
}
