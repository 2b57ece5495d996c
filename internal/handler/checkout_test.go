package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/shipping"
)

// --- Mock implementations ---

type stubQuoter struct {
	quote *shipping.Quote
	err   error
}

func (s *stubQuoter) Resolve(_ context.Context, _, _, _ int64) (*shipping.Quote, error) {
	return s.quote, s.err
}

type stubApplier struct {
	applied *coupon.Applied
	err     error
}

func (s *stubApplier) Apply(_ context.Context, code, _ string, _ decimal.Decimal) (*coupon.Applied, error) {
	if code == "" {
		return nil, nil
	}
	return s.applied, s.err
}

type mockOrderRepo struct {
	lastOrder   *order.Order
	clearedUser string
	err         error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order, clearCartForUser string) error {
	if m.err != nil {
		return m.err
	}
	o.ID = 1
	o.Number = order.Number(o.ID)
	o.CreatedAt = time.Now()
	m.lastOrder = o
	m.clearedUser = clearCartForUser
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, _ int64) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ int64, _ string) error {
	return nil
}

type mockCartRepo struct {
	carts map[string]*cart.Cart
}

func (m *mockCartRepo) GetActive(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (m *mockCartRepo) PutItem(_ context.Context, _ string, _ cart.Item) error { return nil }

func (m *mockCartRepo) RemoveItem(_ context.Context, _, _ string, _ int64) error { return nil }

func (m *mockCartRepo) Clear(_ context.Context, _ string) error { return nil }

// --- Helpers ---

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testQuote(cityCost string) *shipping.Quote {
	cost := money(cityCost)
	return &shipping.Quote{
		CountryID:     1,
		CountryName:   "Jordan",
		CityID:        3,
		CityName:      "Sweifieh",
		CityCost:      &cost,
		EffectiveCost: &cost,
	}
}

func newCheckoutHandler(quoter order.ShippingQuoter, applier order.CouponApplier, repo order.Repository) *CheckoutHandler {
	svc := order.NewService(quoter, applier, repo, nil)
	return NewCheckoutHandler(svc, nil)
}

func authed(req *http.Request, userID string) *http.Request {
	info := &auth.APIKeyInfo{ID: "key-1", UserID: userID, Scopes: []string{auth.ScopeCheckout}}
	return req.WithContext(context.WithValue(req.Context(), apiKeyCtxKey, info))
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = authed(req, userID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// --- Tests ---

func TestCheckoutSummary(t *testing.T) {
	h := newCheckoutHandler(
		&stubQuoter{quote: testQuote("5.00")},
		&stubApplier{applied: &coupon.Applied{
			ID:             1,
			Code:           "SAVE10",
			DiscountType:   coupon.DiscountPercentage,
			DiscountValue:  money("10"),
			DiscountAmount: money("1.30"),
		}},
		&mockOrderRepo{},
	)

	body := `{
		"items": [{"productId": "p1", "name": "Widget", "quantity": 2, "unitPrice": "6.50", "taxRate": "0.05"}],
		"shippingAddress": {"name": "Buyer", "line1": "1 Test St", "cityId": 3},
		"couponCode": "SAVE10"
	}`
	rec := postJSON(t, h.Summary, "/api/checkout/summary", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got summaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "13.00", got.ProductTotal)
	assert.Equal(t, "0.65", got.TaxTotal)
	assert.Equal(t, "5.00", got.ShippingTotal)
	assert.Equal(t, "1.30", got.DiscountTotal)
	assert.Equal(t, "17.35", got.GrandTotal)

	require.Len(t, got.TaxLines, 1)
	assert.Equal(t, "p1", got.TaxLines[0].ProductID)
	assert.Equal(t, "0.65", got.TaxLines[0].Amount)

	require.NotNil(t, got.Shipping)
	assert.Equal(t, "Sweifieh", got.Shipping.CityName)
	assert.Equal(t, "5.00", got.Shipping.Cost)

	require.NotNil(t, got.Coupon)
	assert.Equal(t, "SAVE10", got.Coupon.Code)
	assert.Equal(t, "1.30", got.Coupon.DiscountAmount)
}

func TestCheckoutSummary_DegradesOnCouponError(t *testing.T) {
	h := newCheckoutHandler(
		&stubQuoter{err: apperr.NotFound("Shipping city not found")},
		&stubApplier{err: apperr.BadRequest(coupon.MsgInvalidCode)},
		&mockOrderRepo{},
	)

	body := `{
		"items": [{"productId": "p1", "quantity": 1, "unitPrice": "6.50"}],
		"shippingAddress": {"cityId": 99},
		"couponCode": "BOGUS"
	}`
	rec := postJSON(t, h.Summary, "/api/checkout/summary", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got summaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "0.00", got.ShippingTotal)
	assert.Equal(t, "0.00", got.DiscountTotal)
	assert.Equal(t, "6.50", got.GrandTotal)
	assert.Nil(t, got.Coupon)
}

func TestCheckoutSummary_InvalidDecimal(t *testing.T) {
	h := newCheckoutHandler(&stubQuoter{}, &stubApplier{}, &mockOrderRepo{})

	body := `{"items": [{"productId": "p1", "quantity": 1, "unitPrice": "not-a-number"}]}`
	rec := postJSON(t, h.Summary, "/api/checkout/summary", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	h := newCheckoutHandler(&stubQuoter{quote: testQuote("5.00")}, &stubApplier{}, repo)

	body := `{
		"customerEmail": "buyer@example.com",
		"customerName": "Buyer",
		"items": [{"productId": "p1", "name": "Widget", "quantity": 1, "unitPrice": "8.00", "taxRate": "0.05"}],
		"shippingAddress": {"name": "Buyer", "line1": "1 Test St", "cityId": 3},
		"payment": {"method": "COD"}
	}`
	rec := postJSON(t, h.PlaceOrder, "/api/checkout/order", body, "user-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got orderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "ORD-1000", got.OrderNumber)
	assert.Equal(t, order.StatusProcessing, got.Status)
	assert.Equal(t, "buyer@example.com", got.CustomerEmail)
	assert.Equal(t, "13.40", got.Summary.GrandTotal)

	require.NotNil(t, repo.lastOrder)
	assert.Equal(t, "user-1", repo.clearedUser)
	assert.NotEmpty(t, repo.lastOrder.SummaryJSON)
	assert.NotEmpty(t, repo.lastOrder.LinesJSON)
}

func TestPlaceOrder_StrictFailures(t *testing.T) {
	tests := []struct {
		name     string
		quoter   order.ShippingQuoter
		applier  order.CouponApplier
		body     string
		wantCode int
	}{
		{
			name:     "missing email",
			quoter:   &stubQuoter{},
			applier:  &stubApplier{},
			body:     `{"items": [{"productId": "p1", "quantity": 1, "unitPrice": "1.00"}], "payment": {"method": "COD"}}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "no items",
			quoter:   &stubQuoter{},
			applier:  &stubApplier{},
			body:     `{"customerEmail": "a@b.com", "payment": {"method": "COD"}}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unresolvable shipping aborts",
			quoter:   &stubQuoter{err: apperr.NotFound("Shipping city not found")},
			applier:  &stubApplier{},
			body:     `{"customerEmail": "a@b.com", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1.00"}], "shippingAddress": {"cityId": 99}, "payment": {"method": "COD"}}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "bad coupon aborts",
			quoter:   &stubQuoter{},
			applier:  &stubApplier{err: apperr.BadRequest(coupon.MsgInvalidCode)},
			body:     `{"customerEmail": "a@b.com", "items": [{"productId": "p1", "quantity": 1, "unitPrice": "1.00"}], "couponCode": "BOGUS", "payment": {"method": "COD"}}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCheckoutHandler(tt.quoter, tt.applier, &mockOrderRepo{})
			rec := postJSON(t, h.PlaceOrder, "/api/checkout/order", tt.body, "")
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestPlaceOrder_FromCart(t *testing.T) {
	carts := cart.NewService(&mockCartRepo{carts: map[string]*cart.Cart{
		"user-1": {
			UserID: "user-1",
			Items: []cart.Item{
				{ProductID: "p1", Name: "Widget", Quantity: 3, UnitPrice: money("4.00")},
			},
		},
	}}, nil)

	repo := &mockOrderRepo{}
	svc := order.NewService(&stubQuoter{}, &stubApplier{}, repo, nil)
	h := NewCheckoutHandler(svc, carts)

	body := `{"customerEmail": "buyer@example.com", "payment": {"method": "COD"}}`
	rec := postJSON(t, h.PlaceOrder, "/api/checkout/order", body, "user-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got orderDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "12.00", got.Summary.GrandTotal)
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	h := newCheckoutHandler(&stubQuoter{}, &stubApplier{}, &mockOrderRepo{})

	rec := postJSON(t, h.PlaceOrder, "/api/checkout/order", `{"unknownField": true}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
