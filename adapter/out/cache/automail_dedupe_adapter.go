// Package cache implements Redis-backed adapters.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"automail_server/core/port/out"
)

// DedupeAdapter implements out.Deduper with Redis SET NX, so claims
// are atomic across workers and expire on their own.
type DedupeAdapter struct {
	client *redis.Client
}

func NewDedupeAdapter(client *redis.Client) out.Deduper {
	return &DedupeAdapter{client: client}
}

func (a *DedupeAdapter) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := a.client.SetNX(ctx, "dedupe:"+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe acquire: %w", err)
	}
	return acquired, nil
}
