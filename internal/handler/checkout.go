package handler

import (
	"net/http"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

// CheckoutHandler serves the summary preview and order placement endpoints.
// When a request omits explicit items the authenticated user's cart is
// priced instead.
type CheckoutHandler struct {
	orders *order.Service
	carts  *cart.Service
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(orders *order.Service, carts *cart.Service) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, carts: carts}
}

type summaryRequest struct {
	CouponCode      string      `json:"couponCode,omitempty"`
	ShippingAddress *addressDTO `json:"shippingAddress,omitempty"`
	Items           []lineDTO   `json:"items,omitempty"`
}

// Summary handles POST /api/checkout/summary.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	uid := userID(r.Context())
	lines, err := h.resolveLines(r, req.Items, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sum, err := h.orders.Summary(r.Context(), order.SummaryRequest{
		UserID:          uid,
		ShippingAddress: req.ShippingAddress.toDomain(),
		Lines:           lines,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summaryToDTO(sum))
}

type placeOrderRequest struct {
	CustomerEmail   string      `json:"customerEmail"`
	CustomerName    string      `json:"customerName,omitempty"`
	CouponCode      string      `json:"couponCode,omitempty"`
	ShippingAddress *addressDTO `json:"shippingAddress,omitempty"`
	BillingAddress  *addressDTO `json:"billingAddress,omitempty"`
	Payment         struct {
		Method    string `json:"method"`
		Reference string `json:"reference,omitempty"`
	} `json:"payment"`
	Items []lineDTO `json:"items,omitempty"`
}

// PlaceOrder handles POST /api/checkout/order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	uid := userID(r.Context())
	lines, err := h.resolveLines(r, req.Items, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	placed, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		UserID:          uid,
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress.toDomain(),
		BillingAddress:  req.BillingAddress.toDomain(),
		Payment: order.PaymentMethod{
			Method:    req.Payment.Method,
			Reference: req.Payment.Reference,
		},
		Lines:      lines,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, orderDTO{
		ID:            placed.Order.ID,
		OrderNumber:   placed.Order.Number,
		Status:        placed.Order.Status,
		CustomerEmail: placed.Order.CustomerEmail,
		CustomerName:  placed.Order.CustomerName,
		Summary:       summaryToDTO(placed.Summary),
		CreatedAt:     placed.Order.CreatedAt,
	})
}

func (h *CheckoutHandler) resolveLines(r *http.Request, items []lineDTO, uid string) ([]order.Line, error) {
	if len(items) > 0 {
		return linesToDomain(items)
	}
	if uid == "" {
		return nil, nil
	}
	c, err := h.carts.Get(r.Context(), uid)
	if err != nil {
		return nil, err
	}
	return cart.Lines(c), nil
}
