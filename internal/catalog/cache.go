package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modacart/backend/internal/domain"
)

const (
	productKeyPrefix = "catalog:product:"
	sizeKeyPrefix    = "catalog:size:"
)

// Cache holds catalog display projections in Redis. It caches only the
// fields shown on cart views; stock and price reads never go through it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a catalog display cache with the given entry TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetProductRef returns a cached product projection, or ok=false on a miss.
func (c *Cache) GetProductRef(ctx context.Context, id string) (domain.ProductRef, bool, error) {
	var ref domain.ProductRef
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ref, false, nil
		}
		return ref, false, fmt.Errorf("redis get product ref: %w", err)
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, false, fmt.Errorf("unmarshal product ref: %w", err)
	}
	return ref, true, nil
}

// SetProductRef caches a product projection with the configured TTL.
func (c *Cache) SetProductRef(ctx context.Context, ref domain.ProductRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("marshal product ref: %w", err)
	}
	if err := c.client.Set(ctx, productKeyPrefix+ref.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product ref: %w", err)
	}
	return nil
}

// GetSizeRef returns a cached size projection, or ok=false on a miss.
func (c *Cache) GetSizeRef(ctx context.Context, id string) (domain.SizeRef, bool, error) {
	var ref domain.SizeRef
	data, err := c.client.Get(ctx, sizeKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ref, false, nil
		}
		return ref, false, fmt.Errorf("redis get size ref: %w", err)
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, false, fmt.Errorf("unmarshal size ref: %w", err)
	}
	return ref, true, nil
}

// SetSizeRef caches a size projection with the configured TTL.
func (c *Cache) SetSizeRef(ctx context.Context, ref domain.SizeRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("marshal size ref: %w", err)
	}
	if err := c.client.Set(ctx, sizeKeyPrefix+ref.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set size ref: %w", err)
	}
	return nil
}

// InvalidateProduct drops a product's cached projection.
func (c *Cache) InvalidateProduct(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del product ref: %w", err)
	}
	return nil
}
