package redisx

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/storefront/internal/domain/settings"
)

const settingsKey = "settings:snapshot"

// SettingsCache keeps the full settings snapshot in redis as a JSON object.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ settings.Cache = (*SettingsCache)(nil)

func NewSettingsCache(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

func (c *SettingsCache) Get(ctx context.Context) (settings.Values, bool, error) {
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	v := settings.Values{}
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		v[key] = s
		return nil
	}); err != nil {
		return nil, false, errors.Wrap(err, "decode snapshot")
	}
	return v, true, nil
}

func (c *SettingsCache) Set(ctx context.Context, v settings.Values) error {
	var e jx.Encoder
	e.ObjStart()
	for key, val := range v {
		e.FieldStart(key)
		e.Str(val)
	}
	e.ObjEnd()

	if err := c.client.Set(ctx, settingsKey, e.Bytes(), c.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
