package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/apperr"
)

type mockCouponRepo struct {
	rule *Rule
	err  error
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	return m.rule, m.err
}

func (m *mockCouponRepo) ListEnabled(_ context.Context) ([]Rule, error) {
	return nil, nil
}

func newApplierAt(repo Repository, now time.Time) *Applier {
	a := NewApplier(repo)
	a.now = func() time.Time { return now }
	return a
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplier_Apply(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)
	minCart := dec("50.00")

	tests := []struct {
		name       string
		rule       *Rule
		lookupErr  error
		code       string
		userID     string
		subtotal   decimal.Decimal
		wantAmount string
		wantMsg    string
	}{
		{
			name: "percentage discount",
			rule: &Rule{
				ID: 1, Code: "SAVE10", DiscountType: DiscountPercentage,
				Value: dec("10"), Status: StatusEnabled,
			},
			code:       "SAVE10",
			subtotal:   dec("100.00"),
			wantAmount: "10.00",
		},
		{
			name: "percentage rounds half up at 2 decimals",
			rule: &Rule{
				ID: 2, Code: "SAVE15", DiscountType: DiscountPercentage,
				Value: dec("15"), Status: StatusEnabled,
			},
			code:       "SAVE15",
			subtotal:   dec("33.33"),
			wantAmount: "5.00", // 33.33 * 0.15 = 4.9995 -> 5.00
		},
		{
			name: "flat discount capped at subtotal",
			rule: &Rule{
				ID: 3, Code: "TENOFF", DiscountType: DiscountFlat,
				Value: dec("10.00"), Status: StatusEnabled,
			},
			code:       "TENOFF",
			subtotal:   dec("7.50"),
			wantAmount: "7.50",
		},
		{
			name:      "unknown code",
			lookupErr: ErrUnknownCode,
			code:      "BOGUS",
			subtotal:  dec("100.00"),
			wantMsg:   MsgInvalidCode,
		},
		{
			name: "disabled coupon",
			rule: &Rule{
				ID: 4, Code: "OFFLINE", DiscountType: DiscountFlat,
				Value: dec("5"), Status: StatusDisabled,
			},
			code:     "OFFLINE",
			subtotal: dec("100.00"),
			wantMsg:  MsgNotActive,
		},
		{
			name: "not started yet",
			rule: &Rule{
				ID: 5, Code: "SOON", DiscountType: DiscountFlat,
				Value: dec("5"), Status: StatusEnabled, StartsAt: &future,
			},
			code:     "SOON",
			subtotal: dec("100.00"),
			wantMsg:  MsgNotActive,
		},
		{
			name: "expired",
			rule: &Rule{
				ID: 6, Code: "OLD", DiscountType: DiscountFlat,
				Value: dec("5"), Status: StatusEnabled, EndsAt: &past,
			},
			code:     "OLD",
			subtotal: dec("100.00"),
			wantMsg:  MsgExpired,
		},
		{
			name: "below minimum cart value",
			rule: &Rule{
				ID: 7, Code: "BIG", DiscountType: DiscountFlat,
				Value: dec("5"), Status: StatusEnabled, MinCartValue: &minCart,
			},
			code:     "BIG",
			subtotal: dec("49.99"),
			wantMsg:  MsgBelowMinimum,
		},
		{
			name: "restricted coupon rejects non-member",
			rule: &Rule{
				ID: 8, Code: "VIP", DiscountType: DiscountPercentage,
				Value: dec("20"), Status: StatusEnabled,
				AllowedUserIDs: []string{"u1", "u2"},
			},
			code:     "VIP",
			userID:   "u3",
			subtotal: dec("100.00"),
			wantMsg:  MsgNotEligible,
		},
		{
			name: "restricted coupon rejects anonymous user",
			rule: &Rule{
				ID: 9, Code: "VIP", DiscountType: DiscountPercentage,
				Value: dec("20"), Status: StatusEnabled,
				AllowedUserIDs: []string{"u1"},
			},
			code:     "VIP",
			subtotal: dec("100.00"),
			wantMsg:  MsgNotEligible,
		},
		{
			name: "restricted coupon accepts member",
			rule: &Rule{
				ID: 10, Code: "VIP", DiscountType: DiscountPercentage,
				Value: dec("20"), Status: StatusEnabled,
				AllowedUserIDs: []string{"u1", "u2"},
			},
			code:       "VIP",
			userID:     "u2",
			subtotal:   dec("100.00"),
			wantAmount: "20.00",
		},
		{
			name: "zero computed discount rejected",
			rule: &Rule{
				ID: 11, Code: "NOTHING", DiscountType: DiscountPercentage,
				Value: dec("0"), Status: StatusEnabled,
			},
			code:     "NOTHING",
			subtotal: dec("100.00"),
			wantMsg:  MsgZeroValue,
		},
		{
			name: "flat discount on empty subtotal rejected",
			rule: &Rule{
				ID: 12, Code: "TENOFF", DiscountType: DiscountFlat,
				Value: dec("10.00"), Status: StatusEnabled,
			},
			code:     "TENOFF",
			subtotal: decimal.Zero,
			wantMsg:  MsgZeroValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := newApplierAt(&mockCouponRepo{rule: tt.rule, err: tt.lookupErr}, fixedNow)

			applied, err := applier.Apply(context.Background(), tt.code, tt.userID, tt.subtotal)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, 400, apperr.Status(err))
				assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, applied)
			assert.Equal(t, tt.wantAmount, applied.DiscountAmount.StringFixed(2))
			assert.True(t, applied.DiscountAmount.LessThanOrEqual(tt.subtotal))
		})
	}
}

func TestApplier_BlankCodeIsNoCoupon(t *testing.T) {
	applier := NewApplier(&mockCouponRepo{err: ErrUnknownCode})

	applied, err := applier.Apply(context.Background(), "  ", "u1", dec("10.00"))
	require.NoError(t, err)
	assert.Nil(t, applied)
}

func TestComputeDiscount_NeverExceedsSubtotal(t *testing.T) {
	subtotals := []string{"0.01", "1.00", "19.99", "250.00"}
	rules := []*Rule{
		{DiscountType: DiscountPercentage, Value: dec("100")},
		{DiscountType: DiscountPercentage, Value: dec("150")},
		{DiscountType: DiscountFlat, Value: dec("9999")},
	}

	for _, s := range subtotals {
		subtotal := dec(s)
		for _, rule := range rules {
			amount, err := ComputeDiscount(rule, subtotal)
			require.NoError(t, err)
			assert.True(t, amount.LessThanOrEqual(subtotal), "amount %s subtotal %s", amount, subtotal)
			assert.False(t, amount.IsNegative())
		}
	}
}

func TestComputeDiscount_UnsupportedType(t *testing.T) {
	_, err := ComputeDiscount(&Rule{DiscountType: "BOGOF"}, dec("10.00"))
	require.Error(t, err)
}
