// Package cache provides a Redis-backed cache for analysis results so hot
// wallets are not re-analyzed on every request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/observability"
)

// DefaultTTL is how long a cached result stays fresh.
const DefaultTTL = 5 * time.Minute

// MetricsCache stores computed wallet metrics as JSON values keyed by
// wallet address.
type MetricsCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewMetricsCache creates a cache with the given key prefix. A zero ttl
// selects DefaultTTL.
func NewMetricsCache(client *redis.Client, prefix string, ttl time.Duration) *MetricsCache {
	if prefix == "" {
		prefix = "degenscore"
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MetricsCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *MetricsCache) key(wallet string) string {
	return c.prefix + ":metrics:" + wallet
}

// Get returns the cached metrics for a wallet, or (nil, nil) on a miss.
func (c *MetricsCache) Get(ctx context.Context, wallet string) (*domain.WalletMetrics, error) {
	data, err := c.client.Get(ctx, c.key(wallet)).Bytes()
	if err == redis.Nil {
		observability.RecordCacheHit(false)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", c.key(wallet), err)
	}

	var m domain.WalletMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		// A malformed entry is treated as a miss; it will be overwritten.
		observability.RecordCacheHit(false)
		return nil, nil
	}
	observability.RecordCacheHit(true)
	return &m, nil
}

// Set stores the metrics for a wallet with the configured TTL.
func (c *MetricsCache) Set(ctx context.Context, wallet string, m *domain.WalletMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := c.client.Set(ctx, c.key(wallet), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", c.key(wallet), err)
	}
	return nil
}

// Invalidate drops the cached entry for a wallet.
func (c *MetricsCache) Invalidate(ctx context.Context, wallet string) error {
	if err := c.client.Del(ctx, c.key(wallet)).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", c.key(wallet), err)
	}
	return nil
}
