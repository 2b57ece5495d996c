package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/auth"
)

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository resolves API key credentials from PostgreSQL. Revoked
// keys are kept in the table with active = FALSE and never match.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash returns the active key whose HMAC-SHA256 hash matches, or
// auth.ErrNotFound. UserID is empty for keys not bound to an account.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	const q = `
		SELECT id, key_hash, name, COALESCE(user_id, ''), scopes
		FROM api_keys
		WHERE key_hash = $1 AND active = TRUE`

	info := &auth.APIKeyInfo{}
	err := r.pool.QueryRow(ctx, q, hash).Scan(
		&info.ID,
		&info.KeyHash,
		&info.Name,
		&info.UserID,
		&info.Scopes,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, auth.ErrNotFound
	case err != nil:
		return nil, errors.Wrap(err, "query api key")
	}
	return info, nil
}
