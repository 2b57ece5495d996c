package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT id, code, discount_type, value, description, status,
		starts_at, ends_at, min_cart_value
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	listEnabledCouponsSQL = `SELECT id, code, discount_type, value, description, status,
		starts_at, ends_at, min_cart_value
		FROM coupons WHERE status = 'ENABLED' ORDER BY id`

	listCouponUsersSQL = `SELECT user_id FROM coupon_users WHERE coupon_id = $1`

	listCouponUsersBatchSQL = `SELECT coupon_id, user_id FROM coupon_users WHERE coupon_id = ANY($1)`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code (case-insensitive). Returns
// coupon.ErrUnknownCode when no matching coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCouponRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrUnknownCode
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	userRows, err := r.pool.Query(ctx, listCouponUsersSQL, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("listing coupon users for %q: %w", code, err)
	}
	rule.AllowedUserIDs, err = pgx.CollectRows(userRows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing coupon users for %q: %w", code, err)
	}
	return &rule, nil
}

// ListEnabled returns all enabled coupons with their user restrictions.
func (r *CouponRepository) ListEnabled(ctx context.Context) ([]coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, listEnabledCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	rules, err := pgx.CollectRows(rows, scanCouponRule)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	if len(rules) == 0 {
		return rules, nil
	}

	ids := make([]int64, len(rules))
	index := make(map[int64]int, len(rules))
	for i, rule := range rules {
		ids[i] = rule.ID
		index[rule.ID] = i
	}
	userRows, err := r.pool.Query(ctx, listCouponUsersBatchSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing coupon users: %w", err)
	}
	defer userRows.Close()
	for userRows.Next() {
		var (
			couponID int64
			userID   string
		)
		if err := userRows.Scan(&couponID, &userID); err != nil {
			return nil, fmt.Errorf("scanning coupon user: %w", err)
		}
		if i, ok := index[couponID]; ok {
			rules[i].AllowedUserIDs = append(rules[i].AllowedUserIDs, userID)
		}
	}
	return rules, userRows.Err()
}

func scanCouponRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var (
		rule         coupon.Rule
		discountType string
		status       string
		value        decimal.Decimal
		startsAt     *time.Time
		endsAt       *time.Time
		minCartValue *decimal.Decimal
	)
	err := row.Scan(
		&rule.ID, &rule.Code, &discountType, &value, &rule.Description, &status,
		&startsAt, &endsAt, &minCartValue,
	)
	rule.DiscountType = coupon.DiscountType(discountType)
	rule.Status = coupon.Status(status)
	rule.Value = value
	rule.StartsAt = startsAt
	rule.EndsAt = endsAt
	rule.MinCartValue = minCartValue
	return rule, err
}
