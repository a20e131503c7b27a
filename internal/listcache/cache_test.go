// ABOUTME: Tests for the list cache used by the conversation controller
// ABOUTME: Validates TTL expiration, size limits, invalidation, cleanup and concurrency safety

package listcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newWithClock[V any](t *testing.T, ttl time.Duration, maxSize int) (*Cache[V], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	c := New[V](ttl, maxSize)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_Get_Missing(t *testing.T) {
	c, _ := newWithClock[[]string](t, time.Minute, 10)

	_, ok := c.Get("channels:u1")
	assert.False(t, ok)
}

func TestCache_SetAndGet(t *testing.T) {
	c, _ := newWithClock[[]string](t, time.Minute, 10)

	c.Set("channels:u1", []string{"general", "random"})

	got, ok := c.Get("channels:u1")
	require.True(t, ok)
	assert.Equal(t, []string{"general", "random"}, got)
}

func TestCache_Expired(t *testing.T) {
	c, clock := newWithClock[int](t, 30*time.Second, 10)

	c.Set("threads:c1", 3)
	clock.Advance(29 * time.Second)
	_, ok := c.Get("threads:c1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("threads:c1")
	assert.False(t, ok, "entry at exactly the TTL is expired")
}

func TestCache_Set_RefreshesTimestamp(t *testing.T) {
	c, clock := newWithClock[int](t, 30*time.Second, 10)

	c.Set("k", 1)
	clock.Advance(20 * time.Second)
	c.Set("k", 2)
	clock.Advance(20 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCache_Eviction(t *testing.T) {
	c, _ := newWithClock[int](t, time.Minute, 3)

	c.Set("key-1", 1)
	c.Set("key-2", 2)
	c.Set("key-3", 3)
	c.Set("key-4", 4)

	_, ok := c.Get("key-1")
	assert.False(t, ok, "oldest key should be evicted")
	for _, k := range []string{"key-2", "key-3", "key-4"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_Eviction_RespectsRefresh(t *testing.T) {
	c, _ := newWithClock[int](t, time.Minute, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b became oldest after a was refreshed")
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCache_Unbounded(t *testing.T) {
	c, _ := newWithClock[int](t, time.Minute, 0)

	for i := range 500 {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, 500, c.Len())
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newWithClock[int](t, time.Minute, 10)

	c.Set("channels:u1", 1)
	c.Set("threads:c1", 2)
	c.Invalidate("channels:u1")
	c.Invalidate("never-set")

	_, ok := c.Get("channels:u1")
	assert.False(t, ok)
	_, ok = c.Get("threads:c1")
	assert.True(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c, _ := newWithClock[int](t, time.Minute, 10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	c.Set("c", 3)
	_, ok := c.Get("c")
	assert.True(t, ok, "cache usable after clear")
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	c := New[int](0, 10)
	defer c.Close()

	c.Set("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Cleanup(t *testing.T) {
	c, clock := newWithClock[int](t, 10*time.Second, 100)

	c.Set("cleanup-1", 1)
	c.Set("cleanup-2", 2)
	clock.Advance(5 * time.Second)
	c.Set("cleanup-3", 3)
	clock.Advance(6 * time.Second)

	c.runCleanup()

	assert.Equal(t, 1, c.Len(), "only the fresh entry survives cleanup")
	_, ok := c.Get("cleanup-3")
	assert.True(t, ok)

	c.mu.RLock()
	orderLen := c.order.Len()
	c.mu.RUnlock()
	assert.Equal(t, 1, orderLen, "order list tracks the map")
}

func TestCache_CleanupGoroutine(t *testing.T) {
	c := New[int](10*time.Millisecond, 100)
	defer c.Close()

	c.Set("short-lived", 1)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](5*time.Minute, 1000)
	defer c.Close()

	const numGoroutines = 50
	const opsPerGoroutine = 100

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Go(func() {
			for j := range opsPerGoroutine {
				key := fmt.Sprintf("key-%d-%d", i%26, j%10)
				c.Set(key, j)
				c.Get(key)
				if j%7 == 0 {
					c.Invalidate(key)
				}
			}
		})
	}
	wg.Wait()

	c.Set("final-key", 1)
	_, ok := c.Get("final-key")
	assert.True(t, ok)
}

func TestCache_Close(t *testing.T) {
	c := New[int](5*time.Minute, 100)

	c.Set("before-close", 1)
	c.Close()
	c.Close()

	_, ok := c.Get("before-close")
	assert.True(t, ok, "values remain readable after close")
}
