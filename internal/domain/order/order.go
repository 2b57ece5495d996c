package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/shipping"
)

// ErrNotFound is returned when an order lookup matches no row.
var ErrNotFound = errors.New("order not found")

// StatusProcessing is the default status assigned to newly placed orders.
// Status is free text beyond that; admins manage their own vocabulary.
const StatusProcessing = "PROCESSING"

// Line is a priced order line as captured at checkout time.
type Line struct {
	ProductID    string
	Name         string
	VariantID    int64
	SKU          string
	VariantLabel string
	Quantity     int
	UnitPrice    decimal.Decimal
	// TaxRate is a fraction of the line price (0.05 = 5%). Zero means untaxed.
	TaxRate decimal.Decimal
}

// Total returns quantity * unit price rounded half-up to scale 2.
func (l *Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// TaxLine records the tax charged for a single order line.
type TaxLine struct {
	ProductID string
	Name      string
	Rate      decimal.Decimal
	Amount    decimal.Decimal
}

// Address is a shipping or billing address snapshot.
type Address struct {
	Name      string
	Phone     string
	Line1     string
	Line2     string
	Postcode  string
	CountryID int64
	StateID   int64
	CityID    int64
}

// PaymentMethod is stored as an opaque snapshot on the order.
type PaymentMethod struct {
	Method    string
	Reference string
}

// Summary is the computed pricing breakdown for a checkout session or a
// persisted order. All totals are always present, scale-2, never nil.
type Summary struct {
	ProductTotal  decimal.Decimal
	TaxTotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	TaxLines      []TaxLine
	Shipping      *shipping.Quote
	Coupon        *coupon.Applied
}

// Order is a persisted checkout order. Created once at checkout; immutable
// afterwards except for status changes and the lazy order-number backfill.
type Order struct {
	ID            int64
	Number        string
	UserID        string
	CustomerEmail string
	CustomerName  string
	Status        string

	SummaryJSON  []byte
	ShippingJSON []byte
	BillingJSON  []byte
	PaymentJSON  []byte
	LinesJSON    []byte

	CreatedAt time.Time
}

// Number derives the deterministic order number from a database identity,
// avoiding a separate sequence generator.
func Number(id int64) string {
	return fmt.Sprintf("ORD-%d", id+999)
}

// Repository defines persistence operations for orders. Create runs the
// insert, the order-number backfill, and the buyer's cart clearing inside a
// single transaction.
type Repository interface {
	Create(ctx context.Context, o *Order, clearCartForUser string) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
