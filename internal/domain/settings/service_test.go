package settings

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	values  Values
	allErr  error
	putKey  string
	putVal  string
	putErr  error
	allHits int
}

func (m *mockRepo) All(_ context.Context) (Values, error) {
	m.allHits++
	return m.values, m.allErr
}

func (m *mockRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *mockRepo) Put(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.putKey, m.putVal = key, value
	return nil
}

type mockCache struct {
	values      Values
	getErr      error
	setErr      error
	invalidated bool
	stored      Values
}

func (m *mockCache) Get(_ context.Context) (Values, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.values == nil {
		return nil, false, nil
	}
	return m.values, true, nil
}

func (m *mockCache) Set(_ context.Context, v Values) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.stored = v
	return nil
}

func (m *mockCache) Invalidate(_ context.Context) error {
	m.invalidated = true
	return nil
}

func TestAll(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := &mockRepo{values: Values{KeyStoreName: "From DB"}}
		cache := &mockCache{values: Values{KeyStoreName: "From Cache"}}
		svc := NewService(repo, cache)

		v, err := svc.All(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "From Cache", v[KeyStoreName])
		assert.Zero(t, repo.allHits)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		repo := &mockRepo{values: Values{KeyStoreName: "Storefront"}}
		cache := &mockCache{}
		svc := NewService(repo, cache)

		v, err := svc.All(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Storefront", v[KeyStoreName])
		assert.Equal(t, v, cache.stored)
	})

	t.Run("cache read error degrades to repository", func(t *testing.T) {
		repo := &mockRepo{values: Values{KeyStoreName: "Storefront"}}
		cache := &mockCache{getErr: errors.New("redis down")}
		svc := NewService(repo, cache)

		v, err := svc.All(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Storefront", v[KeyStoreName])
	})

	t.Run("nil cache works", func(t *testing.T) {
		repo := &mockRepo{values: Values{KeyCurrencyCode: "USD"}}
		svc := NewService(repo, nil)

		v, err := svc.All(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "USD", v[KeyCurrencyCode])
	})

	t.Run("repository error propagates", func(t *testing.T) {
		repo := &mockRepo{allErr: errors.New("db down")}
		svc := NewService(repo, &mockCache{})

		_, err := svc.All(context.Background())
		require.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("writes and invalidates", func(t *testing.T) {
		repo := &mockRepo{values: Values{}}
		cache := &mockCache{values: Values{KeyStoreName: "stale"}}
		svc := NewService(repo, cache)

		err := svc.Update(context.Background(), KeyStoreName, "New Name")
		require.NoError(t, err)
		assert.Equal(t, KeyStoreName, repo.putKey)
		assert.Equal(t, "New Name", repo.putVal)
		assert.True(t, cache.invalidated)
	})

	t.Run("trims the key", func(t *testing.T) {
		repo := &mockRepo{values: Values{}}
		svc := NewService(repo, nil)

		err := svc.Update(context.Background(), "  store.name  ", "X")
		require.NoError(t, err)
		assert.Equal(t, KeyStoreName, repo.putKey)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		svc := NewService(&mockRepo{}, nil)

		err := svc.Update(context.Background(), "   ", "X")
		require.Error(t, err)
	})
}

func TestValuesAccessors(t *testing.T) {
	v := Values{
		KeyStoreName:       "Storefront",
		KeyCheckoutEnabled: "true",
		KeyDefaultTaxRate:  "0.05",
	}

	assert.Equal(t, "Storefront", v.String(KeyStoreName, "fallback"))
	assert.Equal(t, "fallback", v.String("missing", "fallback"))
	assert.True(t, v.Bool(KeyCheckoutEnabled, false))
	assert.False(t, v.Bool("missing", false))

	rate := v.Decimal(KeyDefaultTaxRate, decimal.Zero)
	assert.Equal(t, "0.05", rate.String())
}
