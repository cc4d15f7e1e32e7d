package shape

import (
	"sync"

	isync "github.com/Microsoft/go-nativetrace/internal/sync"
)

// Cache maps shapes to backend descriptors of type D. Lookups on the hot
// path (cache hit) are a single lock-free sync.Map load; a miss takes a
// per-shape exclusive section while the descriptor is built, without
// blocking readers of other shapes.
//
// A failed build is cached for the shape, so repeated emissions of a
// rejected shape short-circuit instead of retrying construction. Failures
// never affect other shapes' entries.
type Cache[D any] struct {
	entries sync.Map // string -> *cacheEntry[D]
}

type cacheEntry[D any] struct {
	once isync.OnceErr[D]
}

// GetOrBuild returns the descriptor for s, invoking build at most once per
// shape process-wide. Concurrent callers for the same shape block until the
// first build completes and then share its result; a partially-built
// descriptor is never published.
func (c *Cache[D]) GetOrBuild(s Shape, build func(Shape) (D, error)) (D, error) {
	key := s.Key()
	v, ok := c.entries.Load(key)
	if !ok {
		v, _ = c.entries.LoadOrStore(key, &cacheEntry[D]{})
	}
	return v.(*cacheEntry[D]).once.Do(func() (D, error) {
		return build(s)
	})
}

// Len reports the number of cached shapes, including failed ones.
func (c *Cache[D]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
