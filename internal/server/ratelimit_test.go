package server

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristankerr161/retell-booking/internal/instrumentation"
)

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(1, 2, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	// buckets are per client
	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, time.Second, l.RetryAfter())
	assert.Equal(t, instrumentation.LimiterLocal, l.Name())
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	l := NewLocalLimiter(10, 10, time.Minute)
	defer l.Stop()

	_, _ = l.Allow(context.Background(), "idle")
	require.Equal(t, 1, l.Len())

	l.cleanup(time.Now().Add(time.Minute))
	assert.Equal(t, 1, l.Len(), "bucket still within ttl")

	l.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, l.Len())
}

func TestLocalLimiter_StopTwice(t *testing.T) {
	l := NewLocalLimiter(1, 1, time.Minute)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLimiter(t *testing.T) {
	mr, rdb := newMiniredis(t)
	l := NewRedisLimiter(rdb, 2, time.Minute, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "198.51.100.2")
	require.NoError(t, err)
	assert.True(t, ok)

	key := DefaultRedisKeyPrefix + ":203.0.113.7"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	// a new window starts once the key expires
	mr.FastForward(time.Minute + time.Second)
	ok, err = l.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, l.Ping(ctx))
	assert.Equal(t, time.Minute, l.RetryAfter())
	assert.Equal(t, instrumentation.LimiterRedis, l.Name())
}

func TestRedisLimiter_Defaults(t *testing.T) {
	_, rdb := newMiniredis(t)
	l := NewRedisLimiter(rdb, 0, 0, "  ")
	assert.Equal(t, 60, l.limit)
	assert.Equal(t, time.Minute, l.window)
	assert.Equal(t, DefaultRedisKeyPrefix, l.prefix)
}

func TestRedisLimiter_ErrorFailsOpen(t *testing.T) {
	mr, rdb := newMiniredis(t)
	l := NewRedisLimiter(rdb, 1, time.Minute, "test")
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	require.Error(t, err)

	// the middleware lets the request through
	h := newTestRouter(t, &stubCalendar{}, func(c *RouterConfig) { c.Limiter = l })
	rec, _ := do(t, h, "POST", "/v1/availability", `{}`)
	assert.Equal(t, 200, rec.Code)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
