package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/product"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	products product.Repository
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products product.Repository) *ProductHandler {
	return &ProductHandler{products: products}
}

type variantDTO struct {
	ID         int64  `json:"id,omitempty"`
	SKU        string `json:"sku,omitempty"`
	Label      string `json:"label"`
	PriceDelta string `json:"priceDelta,omitempty"`
}

type productDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    string       `json:"price"`
	Category string       `json:"category,omitempty"`
	Image    *imageDTO    `json:"image,omitempty"`
	Variants []variantDTO `json:"variants,omitempty"`
}

type imageDTO struct {
	Thumbnail string `json:"thumbnail,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Tablet    string `json:"tablet,omitempty"`
	Desktop   string `json:"desktop,omitempty"`
}

func productToDTO(p *product.Product) productDTO {
	dto := productDTO{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.StringFixed(2),
		Category: p.Category,
	}
	if p.Image != (product.Image{}) {
		dto.Image = &imageDTO{
			Thumbnail: p.Image.Thumbnail,
			Mobile:    p.Image.Mobile,
			Tablet:    p.Image.Tablet,
			Desktop:   p.Image.Desktop,
		}
	}
	for _, v := range p.Variants {
		dto.Variants = append(dto.Variants, variantDTO{
			ID:         v.ID,
			SKU:        v.SKU,
			Label:      v.Label,
			PriceDelta: v.PriceDelta.StringFixed(2),
		})
	}
	return dto
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]productDTO, len(products))
	for i := range products {
		dtos[i] = productToDTO(&products[i])
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// Get handles GET /api/products/{productID}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, apperr.NotFound("Product not found"))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, productToDTO(p))
}

// Upsert handles PUT /api/admin/products/{productID}.
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req productDTO
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "productID")
	if req.Name == "" {
		writeError(w, r, apperr.BadRequest("Product name is required"))
		return
	}

	price, err := parseMoney(req.Price, "price")
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &product.Product{
		ID:       req.ID,
		Name:     req.Name,
		Price:    price,
		Category: req.Category,
	}
	if req.Image != nil {
		p.Image = product.Image{
			Thumbnail: req.Image.Thumbnail,
			Mobile:    req.Image.Mobile,
			Tablet:    req.Image.Tablet,
			Desktop:   req.Image.Desktop,
		}
	}
	for _, v := range req.Variants {
		delta := decimal.Zero
		if v.PriceDelta != "" {
			delta, err = parseMoney(v.PriceDelta, "priceDelta")
			if err != nil {
				writeError(w, r, err)
				return
			}
		}
		p.Variants = append(p.Variants, product.Variant{
			ID:         v.ID,
			SKU:        v.SKU,
			Label:      v.Label,
			PriceDelta: delta,
		})
	}

	if err := h.products.Upsert(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, productToDTO(p))
}
