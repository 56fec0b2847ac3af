// Package cache provides an optional Redis read cache for farmer lookups.
// Cache trouble never fails a request: misses and errors fall through to the
// backing store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
)

const keyPrefix = "agricultor:dni:"

// RecordCache caches farmer records by DNI with a fixed TTL. A nil
// *RecordCache is valid and disables caching, so callers never need to
// branch on configuration.
type RecordCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RecordCache {
	if client == nil {
		return nil
	}
	return &RecordCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached record for dni, or (nil, false) on miss or error.
func (c *RecordCache) Get(ctx context.Context, dni domain.DNI) (*models.Farmer, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, keyPrefix+dni.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "farmer cache read failed", "dni", dni.String(), "error", err)
		return nil, false
	}
	var f models.Farmer
	if err := json.Unmarshal(raw, &f); err != nil {
		// A corrupt entry is dropped so it cannot keep serving bad reads.
		_ = c.client.Del(ctx, keyPrefix+dni.String()).Err()
		return nil, false
	}
	return &f, true
}

// Set stores the record under its DNI. Errors are logged, not returned.
func (c *RecordCache) Set(ctx context.Context, f *models.Farmer) {
	if c == nil || f == nil {
		return
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+f.DNI.String(), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "farmer cache write failed", "dni", f.DNI.String(), "error", err)
	}
}

// Invalidate removes the entry for dni after a mutation.
func (c *RecordCache) Invalidate(ctx context.Context, dni domain.DNI) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, keyPrefix+dni.String()).Err(); err != nil {
		c.logger.WarnContext(ctx, "farmer cache invalidation failed", "dni", dni.String(), "error", err)
	}
}
