package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// Service manages a user's active cart, pricing items from the catalog at
// add time.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the user's active cart; a missing cart is an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Cart{UserID: userID}, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddItem prices the product (and variant) from the catalog and upserts the
// cart line.
func (s *Service) AddItem(ctx context.Context, userID, productID string, variantID int64, quantity int) error {
	if quantity <= 0 {
		return apperr.BadRequest("Quantity must be greater than zero")
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return errors.Wrap(err, "get product")
	}

	price, err := p.UnitPrice(variantID)
	if err != nil {
		return apperr.BadRequest("Unknown product variant")
	}

	item := Item{
		ProductID: p.ID,
		Name:      p.Name,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: price,
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			item.SKU = v.SKU
			item.VariantLabel = v.Label
		}
	}

	return s.carts.PutItem(ctx, userID, item)
}

// RemoveItem drops a cart line.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string, variantID int64) error {
	return s.carts.RemoveItem(ctx, userID, productID, variantID)
}

// Lines converts cart items into checkout order lines.
func Lines(c *Cart) []order.Line {
	lines := make([]order.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = order.Line{
			ProductID:    it.ProductID,
			Name:         it.Name,
			VariantID:    it.VariantID,
			SKU:          it.SKU,
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TaxRate:      it.TaxRate,
		}
	}
	return lines
}
