package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
)

// Client-facing messages for coupon rejections.
const (
	MsgInvalidCode  = "Coupon code is invalid"
	MsgNotActive    = "This coupon is not active"
	MsgExpired      = "This coupon has expired"
	MsgNotEligible  = "You are not eligible for this coupon"
	MsgBelowMinimum = "Order total does not meet the coupon minimum"
	MsgZeroValue    = "Coupon cannot be applied to this order"
)

// ErrUnknownCode is returned by repositories when no coupon matches a code.
var ErrUnknownCode = errors.New("unknown coupon code")

// Applier validates a coupon code against the requesting user and cart
// subtotal, and computes the bounded discount amount.
type Applier struct {
	repo Repository
	now  func() time.Time
}

// NewApplier creates an Applier backed by the given Repository.
func NewApplier(repo Repository) *Applier {
	return &Applier{repo: repo, now: time.Now}
}

// Apply resolves and validates the coupon identified by code for the given
// user and subtotal. A blank code means no coupon was requested and yields
// (nil, nil). All rejections are bad-request-class apperr errors.
func (a *Applier) Apply(ctx context.Context, code, userID string, subtotal decimal.Decimal) (*Applied, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	rule, err := a.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) {
			return nil, apperr.BadRequest(MsgInvalidCode)
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if err := a.checkEligibility(rule, userID, subtotal); err != nil {
		return nil, err
	}

	amount, err := ComputeDiscount(rule, subtotal)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperr.BadRequest(MsgZeroValue)
	}

	return &Applied{
		ID:             rule.ID,
		Code:           rule.Code,
		DiscountType:   rule.DiscountType,
		DiscountValue:  rule.Value,
		DiscountAmount: amount,
		Description:    rule.Description,
	}, nil
}

func (a *Applier) checkEligibility(rule *Rule, userID string, subtotal decimal.Decimal) error {
	if rule.Status != StatusEnabled {
		return apperr.BadRequest(MsgNotActive)
	}

	now := a.now()
	if rule.StartsAt != nil && now.Before(*rule.StartsAt) {
		return apperr.BadRequest(MsgNotActive)
	}
	if rule.EndsAt != nil && now.After(*rule.EndsAt) {
		return apperr.BadRequest(MsgExpired)
	}

	if rule.MinCartValue != nil && subtotal.LessThan(*rule.MinCartValue) {
		return apperr.BadRequest(MsgBelowMinimum)
	}

	if rule.Restricted() {
		if userID == "" {
			return apperr.BadRequest(MsgNotEligible)
		}
		member := false
		for _, id := range rule.AllowedUserIDs {
			if id == userID {
				member = true
				break
			}
		}
		if !member {
			return apperr.BadRequest(MsgNotEligible)
		}
	}

	return nil
}
