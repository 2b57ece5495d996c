package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/order"
)

// OrderHandler serves order history and admin status management.
type OrderHandler struct {
	orders order.Repository
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders order.Repository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func persistedOrderToDTO(o *order.Order) (orderDTO, error) {
	sum, err := order.DecodeSummary(o.SummaryJSON)
	if err != nil {
		return orderDTO{}, errors.Wrapf(err, "decoding summary of order %d", o.ID)
	}
	return orderDTO{
		ID:            o.ID,
		OrderNumber:   o.Number,
		Status:        o.Status,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		Summary:       summaryToDTO(sum),
		CreatedAt:     o.CreatedAt,
	}, nil
}

// ListMine handles GET /api/orders for the authenticated user.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if uid == "" {
		writeError(w, r, apperr.Unauthorized("A user-bound API key is required"))
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]orderDTO, len(orders))
	for i := range orders {
		dtos[i], err = persistedOrderToDTO(&orders[i])
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

// Get handles GET /api/admin/orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, r, apperr.BadRequest("Invalid order id"))
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, apperr.NotFound("Order not found"))
			return
		}
		writeError(w, r, err)
		return
	}

	dto, err := persistedOrderToDTO(o)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

type setOrderStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/admin/orders/{orderID}/status. Status is free
// text; admins manage their own vocabulary.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, r, apperr.BadRequest("Invalid order id"))
		return
	}

	var req setOrderStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeError(w, r, apperr.BadRequest("Status is required"))
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, apperr.NotFound("Order not found"))
			return
		}
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
