package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryDeduplicator_Window(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	d := NewMemoryDeduplicator(10 * time.Second)
	d.now = clock.Now
	ctx := context.Background()

	assert.True(t, d.ShouldProcess(ctx, "wamid.1"))
	assert.False(t, d.ShouldProcess(ctx, "wamid.1"))
	assert.True(t, d.ShouldProcess(ctx, "wamid.2"))

	clock.Advance(9 * time.Second)
	assert.False(t, d.ShouldProcess(ctx, "wamid.1"))

	clock.Advance(time.Second)
	assert.True(t, d.ShouldProcess(ctx, "wamid.1"), "ids are forgotten once the window ends")
}

func TestMemoryDeduplicator_Purge(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	d := NewMemoryDeduplicator(10 * time.Second)
	d.now = clock.Now
	ctx := context.Background()

	d.ShouldProcess(ctx, "a")
	clock.Advance(5 * time.Second)
	d.ShouldProcess(ctx, "b")

	assert.Equal(t, 1, d.Purge(clock.Now().Add(5*time.Second)))
	assert.Equal(t, 1, d.Len())
	assert.False(t, d.ShouldProcess(ctx, "b"))
}

func TestMemoryDeduplicator_ConcurrentFirstSighting(t *testing.T) {
	t.Parallel()

	d := NewMemoryDeduplicator(time.Minute)
	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.ShouldProcess(context.Background(), "wamid.same") {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}

func setupRedisDedup(t *testing.T, window time.Duration) (*miniredis.Miniredis, *RedisDeduplicator) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, newRedisDeduplicator(client, window)
}

func TestRedisDeduplicator_Window(t *testing.T) {
	t.Parallel()

	mr, d := setupRedisDedup(t, 10*time.Second)
	ctx := context.Background()

	assert.True(t, d.ShouldProcess(ctx, "wamid.1"))
	assert.False(t, d.ShouldProcess(ctx, "wamid.1"))
	assert.True(t, mr.Exists(dedupKeyPrefix+"wamid.1"))

	mr.FastForward(11 * time.Second)
	assert.True(t, d.ShouldProcess(ctx, "wamid.1"))
}

func TestRedisDeduplicator_FailsOpen(t *testing.T) {
	t.Parallel()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	d := newRedisDeduplicator(client, 10*time.Second)
	mr.Close()

	assert.True(t, d.ShouldProcess(context.Background(), "wamid.1"))
	assert.True(t, d.ShouldProcess(context.Background(), "wamid.1"))
}

func TestNewRedisDeduplicator(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	d, err := NewRedisDeduplicator("redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, d.ShouldProcess(context.Background(), "x"))

	_, err = NewRedisDeduplicator("not a url", time.Second)
	assert.Error(t, err)
}
