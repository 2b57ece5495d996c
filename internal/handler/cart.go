package handler

import (
	"net/http"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/cart"
)

// CartHandler serves the authenticated user's active cart.
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartItemDTO struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	VariantID    int64  `json:"variantId,omitempty"`
	SKU          string `json:"sku,omitempty"`
	VariantLabel string `json:"variantLabel,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
}

type cartDTO struct {
	Items    []cartItemDTO `json:"items"`
	Subtotal string        `json:"subtotal"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if uid == "" {
		writeError(w, r, apperr.Unauthorized("A user-bound API key is required"))
		return
	}

	c, err := h.carts.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := cartDTO{Items: make([]cartItemDTO, len(c.Items)), Subtotal: c.Subtotal().StringFixed(2)}
	for i, it := range c.Items {
		dto.Items[i] = cartItemDTO{
			ProductID:    it.ProductID,
			Name:         it.Name,
			VariantID:    it.VariantID,
			SKU:          it.SKU,
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.StringFixed(2),
		}
	}
	writeJSON(w, r, http.StatusOK, dto)
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	VariantID int64  `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if uid == "" {
		writeError(w, r, apperr.Unauthorized("A user-bound API key is required"))
		return
	}

	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.carts.AddItem(r.Context(), uid, req.ProductID, req.VariantID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem handles DELETE /api/cart/items.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if uid == "" {
		writeError(w, r, apperr.Unauthorized("A user-bound API key is required"))
		return
	}

	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.carts.RemoveItem(r.Context(), uid, req.ProductID, req.VariantID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
