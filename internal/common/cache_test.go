package common

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedCache_PutGet(t *testing.T) {
	cache := NewBoundedCache[string, int](3)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Put("a", 1)
	cache.Put("b", 2)

	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, cache.Len())
}

func TestBoundedCache_EvictsOldestFirst(t *testing.T) {
	cache := NewBoundedCache[string, int](2)

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry is evicted when the cache is full")

	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestBoundedCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := NewBoundedCache[string, int](2)

	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("a", 10)

	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = cache.Get("b")
	assert.True(t, ok)
}

func TestBoundedCache_MinimumSizeOfOne(t *testing.T) {
	cache := NewBoundedCache[string, int](0)

	cache.Put("a", 1)
	cache.Put("b", 2)

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("b")
	assert.True(t, ok)
}

func TestBoundedCache_ConcurrentAccess(t *testing.T) {
	cache := NewBoundedCache[string, int](64)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%32)
				cache.Put(key, n)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 64)
}
