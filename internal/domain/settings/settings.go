// Package settings stores application-wide key/value configuration editable
// at runtime by administrators.
package settings

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a setting key does not exist.
var ErrNotFound = errors.New("setting not found")

// Well-known keys used across the application.
const (
	KeyStoreName       = "store.name"
	KeyStoreEmail      = "store.email"
	KeyCurrencyCode    = "store.currency"
	KeyDefaultTaxRate  = "checkout.default_tax_rate"
	KeyCheckoutEnabled = "checkout.enabled"
)

// Setting is a single key/value pair. Values are stored as strings and
// interpreted by the typed accessors on Values.
type Setting struct {
	Key   string
	Value string
}

// Values is a snapshot of all settings keyed by name.
type Values map[string]string

// String returns the raw value for key, or fallback when absent.
func (v Values) String(key, fallback string) string {
	if s, ok := v[key]; ok {
		return s
	}
	return fallback
}

// Bool interprets the value as a boolean. Only "true" and "1" are truthy.
func (v Values) Bool(key string, fallback bool) bool {
	s, ok := v[key]
	if !ok {
		return fallback
	}
	return s == "true" || s == "1"
}

// Decimal parses the value as a decimal, returning fallback on absence or
// parse failure.
func (v Values) Decimal(key string, fallback decimal.Decimal) decimal.Decimal {
	s, ok := v[key]
	if !ok {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return d
}

// Repository persists settings.
type Repository interface {
	All(ctx context.Context) (Values, error)
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// Cache is a read-through cache for the full settings snapshot. A nil Cache
// degrades the Service to repository-only reads.
type Cache interface {
	Get(ctx context.Context) (Values, bool, error)
	Set(ctx context.Context, v Values) error
	Invalidate(ctx context.Context) error
}
