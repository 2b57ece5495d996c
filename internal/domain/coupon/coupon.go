package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the cart subtotal.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFlat applies a fixed monetary discount capped at the subtotal.
	DiscountFlat DiscountType = "FLAT"
)

// Status enumerates coupon lifecycle states.
type Status string

const (
	StatusEnabled  Status = "ENABLED"
	StatusDisabled Status = "DISABLED"
)

// Rule defines a coupon's discount behaviour and eligibility constraints.
// A nil StartsAt/EndsAt means the window is open on that side. An empty
// AllowedUserIDs set means the coupon is universally applicable.
type Rule struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	Value          decimal.Decimal
	Description    string
	Status         Status
	StartsAt       *time.Time
	EndsAt         *time.Time
	MinCartValue   *decimal.Decimal
	AllowedUserIDs []string
}

// Restricted reports whether the coupon is limited to an explicit user set.
func (r *Rule) Restricted() bool {
	return len(r.AllowedUserIDs) > 0
}

// Applied holds a computed discount as embedded into an order summary.
// It is computed fresh per checkout request and never persisted standalone.
type Applied struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	DiscountAmount decimal.Decimal
	Description    string
}

// Repository provides lookup of coupon rules.
type Repository interface {
	// FindByCode looks up a coupon by code, case-insensitively.
	// Returns ErrUnknownCode when no coupon matches.
	FindByCode(ctx context.Context, code string) (*Rule, error)
	ListEnabled(ctx context.Context) ([]Rule, error)
}
