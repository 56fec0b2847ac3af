//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plantas/internal/farmer/cache"
	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
	"plantas/pkg/testutil/containers"
)

func newTestRecord(t *testing.T, dni string) *models.Farmer {
	t.Helper()
	f, err := models.New(models.Farmer{
		DNI:        domain.DNI(dni),
		Surname:    "QUISPE",
		GivenNames: "ROSA",
		FullName:   "QUISPE ROSA",
		Department: "Lima",
		Province:   "Barranca",
		District:   "Supe",
	})
	require.NoError(t, err)
	return f
}

func TestRecordCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redis := containers.NewRedisContainer(t)
	c := cache.New(redis.Client, time.Minute, slog.Default())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "12345678"); ok {
		t.Fatalf("expected miss before set")
	}

	record := newTestRecord(t, "12345678")
	c.Set(ctx, record)

	cached, ok := c.Get(ctx, "12345678")
	require.True(t, ok, "expected hit after set")
	require.Equal(t, record.DNI, cached.DNI)
	require.Equal(t, record.Surname, cached.Surname)

	c.Invalidate(ctx, "12345678")
	if _, ok := c.Get(ctx, "12345678"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestRecordCacheDropsCorruptEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redis := containers.NewRedisContainer(t)
	c := cache.New(redis.Client, time.Minute, slog.Default())
	ctx := context.Background()

	require.NoError(t, redis.Client.Set(ctx, "agricultor:dni:12345678", "{not json", time.Minute).Err())

	if _, ok := c.Get(ctx, "12345678"); ok {
		t.Fatalf("expected miss for corrupt entry")
	}

	// The corrupt entry is removed, not just skipped.
	exists, err := redis.Client.Exists(ctx, "agricultor:dni:12345678").Result()
	require.NoError(t, err)
	require.Zero(t, exists)
}

func TestRecordCacheTTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redis := containers.NewRedisContainer(t)
	c := cache.New(redis.Client, time.Second, slog.Default())
	ctx := context.Background()

	c.Set(ctx, newTestRecord(t, "12345678"))

	ttl, err := redis.Client.TTL(ctx, "agricultor:dni:12345678").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Second)
}
