package index

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"catalogsite/internal/search"
)

// Cache holds serialized indexes in redis so that every replica shares one
// copy between rebuilds.
type Cache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Redis: client, TTL: ttl}
}

func cacheKey(locale string) string {
	return "search_index:" + locale
}

// Get reports a miss as (nil, false, nil).
func (c *Cache) Get(ctx context.Context, locale string) ([]search.Item, bool, error) {
	raw, err := c.Redis.Get(ctx, cacheKey(locale)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []search.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *Cache) Set(ctx context.Context, locale string, items []search.Item) error {
	if items == nil {
		items = []search.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, cacheKey(locale), raw, c.TTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, locales ...string) error {
	if len(locales) == 0 {
		return nil
	}
	keys := make([]string, len(locales))
	for i, l := range locales {
		keys[i] = cacheKey(l)
	}
	return c.Redis.Del(ctx, keys...).Err()
}
