// Package auth holds API key identities used to authenticate admin and
// storefront API requests.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no API key matches the presented hash.
var ErrNotFound = errors.New("api key not found")

// Scopes recognized by the authorization layer. Keys and roles both carry
// scope lists; a request needs the scope on its key, and for user-backed
// keys also on the user's role.
const (
	ScopeCheckout = "checkout"
	ScopeCatalog  = "catalog"
	ScopeAdmin    = "admin"
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	UserID  string
	Scopes  []string
}

// Allows reports whether the key grants the given scope. Admin keys grant
// everything.
func (k *APIKeyInfo) Allows(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == ScopeAdmin {
			return true
		}
	}
	return false
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
