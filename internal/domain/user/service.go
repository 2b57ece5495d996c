package user

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront/internal/apperr"
)

// Client-facing messages for authentication rejections. Wrong email and wrong
// password are indistinguishable on purpose.
const (
	MsgBadCredentials  = "Invalid email or password"
	MsgAccountDisabled = "Your account has been disabled"
	MsgAccountLocked   = "Account locked after too many failed logins. Try again later"
)

// LockoutPolicy controls the failed-login counter.
type LockoutPolicy struct {
	// MaxAttempts is the number of consecutive failures that triggers a lock.
	MaxAttempts int
	// Window is how long the account stays locked.
	Window time.Duration
}

// DefaultLockout matches the platform default of 5 attempts, 15 minutes.
var DefaultLockout = LockoutPolicy{MaxAttempts: 5, Window: 15 * time.Minute}

// OnboardingSender delivers the emails a freshly created account receives.
// Only the mailer's onboarding surface is visible to the service.
type OnboardingSender interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendVerification(ctx context.Context, to, name, code string) error
}

// Service handles account management and credential verification.
type Service struct {
	users   Repository
	roles   RoleRepository
	mail    OnboardingSender
	lockout LockoutPolicy
	now     func() time.Time
	newCode func() string
}

// NewService creates a user Service with the given lockout policy. mail may
// be nil when outgoing email is disabled.
func NewService(users Repository, roles RoleRepository, mail OnboardingSender, lockout LockoutPolicy) *Service {
	if lockout.MaxAttempts <= 0 {
		lockout = DefaultLockout
	}
	return &Service{
		users:   users,
		roles:   roles,
		mail:    mail,
		lockout: lockout,
		now:     time.Now,
		newCode: newVerifyCode,
	}
}

// newVerifyCode returns a random six digit email verification code.
func newVerifyCode() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b[:])%1_000_000)
}

// Authenticate verifies the credentials for email. The account row is held
// under a row lock for the whole check so concurrent failed logins cannot
// lose counter increments. Failures increment the counter; reaching the
// policy maximum locks the account for the policy window; success resets it.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var authed *User
	err := s.users.WithLoginLock(ctx, email, func(u *User) error {
		now := s.now()

		if u.Status == StatusDisabled {
			return apperr.Forbidden(MsgAccountDisabled)
		}
		if u.Locked(now) {
			return apperr.Forbidden(MsgAccountLocked)
		}

		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			u.FailedAttempts++
			if u.FailedAttempts >= s.lockout.MaxAttempts {
				until := now.Add(s.lockout.Window)
				u.LockedUntil = &until
			}
			return apperr.Unauthorized(MsgBadCredentials)
		}

		u.FailedAttempts = 0
		u.LockedUntil = nil
		clone := *u
		authed = &clone
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Unauthorized(MsgBadCredentials)
		}
		return nil, err
	}
	return authed, nil
}

// CreateParams holds the input for account creation.
type CreateParams struct {
	Email    string
	Name     string
	Password string
	RoleID   int64
}

// Create registers a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, p CreateParams) (*User, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return nil, apperr.BadRequest("A valid email is required")
	}
	if len(p.Password) < 8 {
		return nil, apperr.BadRequest("Password must be at least 8 characters")
	}
	if _, err := s.roles.GetByID(ctx, p.RoleID); err != nil {
		return nil, apperr.BadRequest("Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: string(hash),
		RoleID:       p.RoleID,
		Status:       StatusActive,
		VerifyCode:   s.newCode(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, errors.Wrap(err, "create user")
	}

	// Onboarding mail is best effort; the account exists either way.
	if s.mail != nil {
		if err := s.mail.SendWelcome(ctx, u.Email, u.Name); err != nil {
			zctx.From(ctx).Warn("Welcome email failed",
				zap.String("user", u.ID), zap.Error(err))
		}
		if err := s.mail.SendVerification(ctx, u.Email, u.Name, u.VerifyCode); err != nil {
			zctx.From(ctx).Warn("Verification email failed",
				zap.String("user", u.ID), zap.Error(err))
		}
	}
	return u, nil
}

// VerifyEmail marks the account's email as verified when code matches the
// one mailed at creation. A verified account accepts no further codes.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return errors.Wrap(err, "get user")
	}
	if u.EmailVerified {
		return apperr.BadRequest("Email is already verified")
	}
	if code == "" || u.VerifyCode != code {
		return apperr.BadRequest("Invalid verification code")
	}
	u.EmailVerified = true
	u.VerifyCode = ""
	return s.users.Update(ctx, u)
}

// SetStatus enables or disables an account.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if status != StatusActive && status != StatusDisabled {
		return apperr.BadRequest("Unknown account status")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return errors.Wrap(err, "get user")
	}
	u.Status = status
	if status == StatusActive {
		u.FailedAttempts = 0
		u.LockedUntil = nil
	}
	return s.users.Update(ctx, u)
}

// AssignRole changes an account's role.
func (s *Service) AssignRole(ctx context.Context, id string, roleID int64) error {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return apperr.BadRequest("Unknown role")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return errors.Wrap(err, "get user")
	}
	u.RoleID = roleID
	return s.users.Update(ctx, u)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}
