package cache_test

import (
	"fmt"
	"sync"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/wardrobe-cache"
	"github.com/krisalay/wardrobe-cache/types"
)

//
// ================= HELPER =================
//

func newTestCache(t *testing.T, capacity int) (*cache.BoundedCache[string, int], *types.Counters) {
	t.Helper()
	metrics := &types.Counters{}
	c, err := cache.New[string, int](capacity, cache.WithMetrics[string, int](metrics))
	require.NoError(t, err)
	return c, metrics
}

//
// ================= BASIC OPERATIONS =================
//

func TestAddAndRetrieve(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Put("key1", 1)

	v, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRetrieveNonExistentKey(t *testing.T) {
	c, metrics := newTestCache(t, 10)
	c.Put("a", 1)

	v, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Equal(t, []string{"a"}, c.Keys(), "a miss must not change state")
	assert.Equal(t, int64(1), metrics.Snapshot().Misses)
}

func TestUpdateExistingKey(t *testing.T) {
	c, metrics := newTestCache(t, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, int64(0), metrics.Snapshot().Evictions, "updating an existing key never evicts")

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
}

func TestRemoveKey(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Put("key1", 1)
	c.Remove("key1")
	c.Remove("never-there")

	_, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

//
// ================= CAPACITY & EVICTION =================
//

func TestEvictionOnCapacity(t *testing.T) {
	c, metrics := newTestCache(t, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3) // evicts b, the least recently touched

	_, ok := c.Get("b")
	assert.False(t, ok)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), metrics.Snapshot().Evictions)
}

func TestEvictionCallbackAndOrder(t *testing.T) {
	var evicted []string
	c, err := cache.New[string, int](3, cache.WithOnEvict(func(k string, v int) {
		evicted = append(evicted, fmt.Sprintf("%s=%d", k, v))
	}))
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, []string{"k0=0", "k1=1", "k2=2"}, evicted)
	assert.Equal(t, []string{"k5", "k4", "k3"}, c.Keys())
	assert.Equal(t, 3, c.Capacity())
}

func TestCapacityNeverExceeded(t *testing.T) {
	c, _ := newTestCache(t, 5)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("k%d", i%17), i)
		c.Get(fmt.Sprintf("k%d", i%7))
		assert.LessOrEqual(t, c.Len(), 5)
	}
}

func TestPurge(t *testing.T) {
	c, _ := newTestCache(t, 3)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Purge()

	assert.Equal(t, 0, c.Len())
	c.Put("c", 3)
	assert.Equal(t, []string{"c"}, c.Keys())
}

//
// ================= CONFIGURATION =================
//

func TestInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := cache.New[string, int](capacity)
		require.ErrorIs(t, err, cache.ErrInvalidCapacity)
		assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))
	}
}

//
// ================= SHARDED =================
//

func TestShardedCache(t *testing.T) {
	c, err := cache.NewShardedCache[string](4, 40, nil)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("k%d", i), fmt.Sprint(i))
	}
	assert.LessOrEqual(t, c.Len(), 40)
	assert.Equal(t, 40, c.Capacity())

	c.Put("hot", "v")
	v, ok := c.Get("hot")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	c.Remove("hot")
	_, ok = c.Get("hot")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestShardedCacheUnevenCapacity(t *testing.T) {
	for _, tc := range []struct{ shards, capacity int }{{4, 10}, {3, 7}, {8, 9}, {5, 5}} {
		c, err := cache.NewShardedCache[int](tc.shards, tc.capacity, nil)
		require.NoError(t, err)

		for i := 0; i < 1000; i++ {
			c.Put(fmt.Sprintf("k%d", i), i)
		}
		assert.Equal(t, tc.capacity, c.Capacity())
		assert.Equal(t, tc.capacity, c.Len(), "%d shards, capacity %d", tc.shards, tc.capacity)
	}
}

func TestShardedCacheInvalid(t *testing.T) {
	_, err := cache.NewShardedCache[int](0, 10, nil)
	assert.ErrorIs(t, err, cache.ErrInvalidCapacity)

	_, err = cache.NewShardedCache[int](8, 4, nil)
	assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
}

//
// ================= CONCURRENCY TEST =================
//

func TestConcurrentGetPut(t *testing.T) {
	c, _ := newTestCache(t, 16)

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				key := fmt.Sprintf("k%d", (id*j)%32)
				c.Put(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	assert.Len(t, c.Keys(), c.Len())
}
