package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
)

var _ catalog.CatalogCache = (*RedisCatalogCache)(nil)

const keyPrefix = "catalog:"

// Key clave redis del catálogo de un tenant.
func Key(slug string) string {
	return keyPrefix + slug
}

// RedisCatalogCache guarda el JSON del catálogo público por slug con TTL.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalogCache construye el cliente; no conecta hasta la primera llamada.
func NewRedisCatalogCache(addr, password string, db int, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func (c *RedisCatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

func (c *RedisCatalogCache) Get(ctx context.Context, slug string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, Key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", Key(slug), err)
	}
	return val, true, nil
}

func (c *RedisCatalogCache) Set(ctx context.Context, slug string, payload []byte) error {
	if err := c.client.Set(ctx, Key(slug), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(slug), err)
	}
	return nil
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, Key(slug)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", Key(slug), err)
	}
	return nil
}
