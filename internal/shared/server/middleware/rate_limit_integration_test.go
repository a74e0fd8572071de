//go:build integration

package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisRateLimiterGCRA(t *testing.T) {
	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	l := NewRedisRateLimiter(client, "test")
	l.now = func() time.Time { return now }
	rule := RateLimitRule{Rate: 1, Burst: 3}

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "UPLOAD|google:1", rule)
		require.NoError(t, err)
		require.True(t, ok, "burst request %d", i+1)
	}
	ok, wait, err := l.Allow(ctx, "UPLOAD|google:1", rule)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	now = now.Add(time.Second)
	ok, _, err = l.Allow(ctx, "UPLOAD|google:1", rule)
	require.NoError(t, err)
	assert.True(t, ok)
}
