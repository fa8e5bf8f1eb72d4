package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/inventory-core/internal/domain/product"
	"github.com/redis/go-redis/v9"
)

// RedisProductCache fronts the product replica with a TTL cache. Cache
// failures are logged and treated as misses; the store remains the source of
// truth.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(addr, password string, db int, ttl time.Duration) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisProductCache{client: client, ttl: ttl}, nil
}

func productKey(id string) string {
	return "product:" + id
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (*product.Product, bool) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[ProductCache] Error reading product %s: %v", id, err)
		}
		return nil, false
	}

	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[ProductCache] Error decoding cached product %s: %v", id, err)
		return nil, false
	}
	return &p, true
}

func (c *RedisProductCache) Set(ctx context.Context, p *product.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("[ProductCache] Error encoding product %s: %v", p.ID, err)
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		log.Printf("[ProductCache] Error caching product %s: %v", p.ID, err)
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		log.Printf("[ProductCache] Error invalidating product %s: %v", id, err)
	}
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
