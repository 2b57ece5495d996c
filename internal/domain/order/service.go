package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/shipping"
)

// MsgEmptyCart rejects order placement with nothing to charge for.
const MsgEmptyCart = "Add items to your cart before placing an order"

// ShippingQuoter resolves the effective shipping rate for an address.
type ShippingQuoter interface {
	Resolve(ctx context.Context, countryID, stateID, cityID int64) (*shipping.Quote, error)
}

// CouponApplier validates a coupon code and computes its bounded discount.
type CouponApplier interface {
	Apply(ctx context.Context, code, userID string, subtotal decimal.Decimal) (*coupon.Applied, error)
}

// ConfirmationSender delivers the order confirmation email. Only the
// success/failure signal is consumed; failures never fail the order.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, to, name, orderNumber, grandTotal string) error
}

// SummaryRequest is the input for a checkout summary preview.
type SummaryRequest struct {
	UserID          string
	ShippingAddress *Address
	Lines           []Line
	CouponCode      string
}

// PlaceOrderRequest is the input for final order placement.
type PlaceOrderRequest struct {
	UserID          string
	CustomerEmail   string
	CustomerName    string
	ShippingAddress *Address
	BillingAddress  *Address
	Payment         PaymentMethod
	Lines           []Line
	CouponCode      string
}

// PlacedOrder is the result of a successful placement.
type PlacedOrder struct {
	Order   *Order
	Summary *Summary
}

// Service composes line totals, tax, shipping, and coupon discounts into an
// order summary, and persists placed orders.
type Service struct {
	shipping ShippingQuoter
	coupons  CouponApplier
	orders   Repository
	mail     ConfirmationSender

	tracer trace.Tracer
	placed metric.Int64Counter
}

// NewService creates an order Service. mail may be nil when confirmation
// emails are disabled. Telemetry goes through the global otel providers,
// which are no-ops unless the process configured them.
func NewService(
	quoter ShippingQuoter,
	coupons CouponApplier,
	orders Repository,
	mail ConfirmationSender,
) *Service {
	placed, _ := otel.Meter("storefront.order").Int64Counter("orders.placed",
		metric.WithDescription("Orders placed successfully"))
	return &Service{
		shipping: quoter,
		coupons:  coupons,
		orders:   orders,
		mail:     mail,
		tracer:   otel.Tracer("storefront.order"),
		placed:   placed,
	}
}

// Summary computes a checkout preview. Shipping and coupon resolution
// failures degrade to zero shipping / no discount instead of failing the
// request; the preview endpoint stays responsive even with a half-filled
// address or a bad code. Line validation errors still propagate.
func (s *Service) Summary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	sum, err := s.build(ctx, req.UserID, req.ShippingAddress, req.Lines, req.CouponCode, true)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// PlaceOrder computes the final summary (strict: any shipping or coupon
// failure aborts placement), persists the order with its JSON snapshots, and
// clears the buyer's cart in the same transaction. The confirmation email is
// sent after commit, best effort.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlacedOrder, error) {
	ctx, span := s.tracer.Start(ctx, "order.place")
	defer span.End()

	if req.CustomerEmail == "" {
		return nil, apperr.BadRequest("Customer email is required")
	}

	sum, err := s.build(ctx, req.UserID, req.ShippingAddress, req.Lines, req.CouponCode, false)
	if err != nil {
		return nil, err
	}

	if !sum.ProductTotal.IsPositive() {
		return nil, apperr.BadRequest(MsgEmptyCart)
	}

	o := &Order{
		UserID:        req.UserID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Status:        StatusProcessing,
		SummaryJSON:   EncodeSummary(sum),
		ShippingJSON:  EncodeAddress(req.ShippingAddress),
		BillingJSON:   EncodeAddress(req.BillingAddress),
		PaymentJSON:   EncodePayment(req.Payment),
		LinesJSON:     EncodeLines(req.Lines),
	}

	if err := s.orders.Create(ctx, o, req.UserID); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	span.SetAttributes(attribute.String("order.number", o.Number))
	if s.placed != nil {
		s.placed.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("coupon", sum.Coupon != nil),
		))
	}

	if s.mail != nil {
		if err := s.mail.SendOrderConfirmation(ctx,
			req.CustomerEmail, req.CustomerName, o.Number, sum.GrandTotal.StringFixed(2),
		); err != nil {
			zctx.From(ctx).Warn("Order confirmation email failed",
				zap.String("order", o.Number), zap.Error(err))
		}
	}

	return &PlacedOrder{Order: o, Summary: sum}, nil
}

func (s *Service) build(
	ctx context.Context,
	userID string,
	addr *Address,
	lines []Line,
	couponCode string,
	degrade bool,
) (*Summary, error) {
	productTotal, taxTotal, taxLines, err := accumulateLines(lines)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ProductTotal:  productTotal,
		TaxTotal:      taxTotal,
		ShippingTotal: decimal.Zero.Round(2),
		DiscountTotal: decimal.Zero.Round(2),
		TaxLines:      taxLines,
	}

	if addr != nil && (addr.CountryID != 0 || addr.StateID != 0 || addr.CityID != 0) {
		quote, err := s.shipping.Resolve(ctx, addr.CountryID, addr.StateID, addr.CityID)
		switch {
		case err == nil:
			sum.Shipping = quote
			sum.ShippingTotal = quote.Cost().Round(2)
		case degrade:
			zctx.From(ctx).Warn("Shipping rate unresolved for summary preview", zap.Error(err))
		default:
			return nil, err
		}
	}

	applied, err := s.coupons.Apply(ctx, couponCode, userID, sum.ProductTotal)
	switch {
	case err == nil:
		if applied != nil {
			sum.Coupon = applied
			sum.DiscountTotal = applied.DiscountAmount
		}
	case degrade:
		zctx.From(ctx).Warn("Coupon unresolved for summary preview", zap.Error(err))
	default:
		return nil, err
	}

	sum.GrandTotal = grandTotal(sum.ProductTotal, sum.TaxTotal, sum.ShippingTotal, sum.DiscountTotal)
	return sum, nil
}
