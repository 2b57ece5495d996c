package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/user"
)

const (
	userColumns = `id, email, name, password_hash, role_id, status, email_verified, verify_code, failed_attempts, locked_until, created_at`

	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	listUsersSQL      = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	lockUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1 FOR UPDATE`

	insertUserSQL = `INSERT INTO users (id, email, name, password_hash, role_id, status, verify_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateUserSQL = `UPDATE users SET email = $2, name = $3, password_hash = $4, role_id = $5,
		status = $6, email_verified = $7, verify_code = $8, failed_attempts = $9, locked_until = $10
		WHERE id = $1`

	getRoleByIDSQL = `SELECT id, name, scopes FROM roles WHERE id = $1`
	listRolesSQL   = `SELECT id, name, scopes FROM roles ORDER BY id`
)

// Postgres unique_violation.
const uniqueViolationCode = "23505"

var (
	_ user.Repository     = (*UserRepository)(nil)
	_ user.RoleRepository = (*RoleRepository)(nil)
)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		u.ID, u.Email, u.Name, u.PasswordHash, u.RoleID, u.Status, u.VerifyCode,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL,
		u.ID, u.Email, u.Name, u.PasswordHash, u.RoleID,
		u.Status, u.EmailVerified, u.VerifyCode, u.FailedAttempts, u.LockedUntil,
	)
	if err != nil {
		return fmt.Errorf("updating user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

// WithLoginLock loads the account by email under a FOR UPDATE row lock, runs
// fn, and writes the account back before committing. The counter write
// commits even when fn returns a business error; only repository failures
// roll the transaction back.
func (r *UserRepository) WithLoginLock(ctx context.Context, email string, fn func(*user.User) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning login tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, lockUserByEmailSQL, email)
	if err != nil {
		return fmt.Errorf("locking user row: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}
		return fmt.Errorf("locking user row: %w", err)
	}

	fnErr := fn(&u)

	_, err = tx.Exec(ctx, updateUserSQL,
		u.ID, u.Email, u.Name, u.PasswordHash, u.RoleID,
		u.Status, u.EmailVerified, u.VerifyCode, u.FailedAttempts, u.LockedUntil,
	)
	if err != nil {
		return fmt.Errorf("writing login counters: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing login tx: %w", err)
	}
	return fnErr
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.RoleID,
		&u.Status, &u.EmailVerified, &u.VerifyCode,
		&u.FailedAttempts, &u.LockedUntil, &u.CreatedAt,
	)
	return u, err
}

// RoleRepository implements user.RoleRepository backed by PostgreSQL.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a RoleRepository that uses the given pool.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*user.Role, error) {
	var role user.Role
	err := r.pool.QueryRow(ctx, getRoleByIDSQL, id).Scan(&role.ID, &role.Name, &role.Scopes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting role %d: %w", id, err)
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]user.Role, error) {
	rows, err := r.pool.Query(ctx, listRolesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.Role, error) {
		var role user.Role
		err := row.Scan(&role.ID, &role.Name, &role.Scopes)
		return role, err
	})
}
