package settings

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/apperr"
)

// Service reads and updates settings, keeping a cached snapshot in front of
// the repository when a cache is configured.
type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// All returns the full settings snapshot, served from cache when possible.
func (s *Service) All(ctx context.Context) (Values, error) {
	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx)
		if err != nil {
			zctx.From(ctx).Warn("settings cache read failed", zap.Error(err))
		} else if ok {
			return v, nil
		}
	}

	v, err := s.repo.All(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load settings")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, v); err != nil {
			zctx.From(ctx).Warn("settings cache write failed", zap.Error(err))
		}
	}
	return v, nil
}

// Update writes a single setting and invalidates the cached snapshot.
func (s *Service) Update(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.BadRequest("Setting key is required")
	}
	if err := s.repo.Put(ctx, key, value); err != nil {
		return errors.Wrapf(err, "put setting %q", key)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			zctx.From(ctx).Warn("settings cache invalidate failed", zap.Error(err))
		}
	}
	return nil
}
