package handler

import (
	"net/http"
	"time"

	"github.com/xenking/storefront/internal/domain/coupon"
)

// CouponHandler lists the coupons a shopper can currently see.
type CouponHandler struct {
	coupons coupon.Repository
}

// NewCouponHandler creates a CouponHandler.
func NewCouponHandler(coupons coupon.Repository) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

type couponDTO struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	DiscountType string     `json:"discountType"`
	Value        string     `json:"value"`
	Description  string     `json:"description,omitempty"`
	StartsAt     *time.Time `json:"startsAt,omitempty"`
	EndsAt       *time.Time `json:"endsAt,omitempty"`
	MinCartValue *string    `json:"minCartValue,omitempty"`
	Restricted   bool       `json:"restricted"`
}

// List handles GET /api/coupons. Only enabled coupons are exposed; the
// allowed-user sets stay private, surfaced as a restricted flag.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.coupons.ListEnabled(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]couponDTO, len(rules))
	for i := range rules {
		rule := &rules[i]
		dtos[i] = couponDTO{
			ID:           rule.ID,
			Code:         rule.Code,
			DiscountType: string(rule.DiscountType),
			Value:        rule.Value.String(),
			Description:  rule.Description,
			StartsAt:     rule.StartsAt,
			EndsAt:       rule.EndsAt,
			MinCartValue: moneyPtr(rule.MinCartValue),
			Restricted:   rule.Restricted(),
		}
	}
	writeJSON(w, r, http.StatusOK, dtos)
}
