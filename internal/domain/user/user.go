package user

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
)

// Account statuses.
const (
	StatusActive   = "ACTIVE"
	StatusDisabled = "DISABLED"
)

// Repository sentinel errors.
var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is a platform account. FailedAttempts and LockedUntil implement the
// failed-login lockout; both are only mutated under a row lock.
type User struct {
	ID             string
	Email          string
	Name           string
	PasswordHash   string
	RoleID         int64
	Status         string
	EmailVerified  bool
	VerifyCode     string
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
}

// Locked reports whether the account is locked out at the given instant.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Role groups permission scopes under a name.
type Role struct {
	ID     int64
	Name   string
	Scopes []string
}

// Allows reports whether the role grants the given scope.
func (r *Role) Allows(scope string) bool {
	return slices.Contains(r.Scopes, scope)
}

// Repository defines persistence operations for accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)

	// WithLoginLock loads the account by email with a FOR UPDATE row lock,
	// runs fn against it, and persists the mutated counters in the same
	// transaction. The write commits even when fn returns a business error,
	// so a failed attempt is never lost to a concurrent login.
	WithLoginLock(ctx context.Context, email string, fn func(*User) error) error
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id int64) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}
