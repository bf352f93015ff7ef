package congru

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LazyMap memoizes the result of a possibly expensive, deterministic
// compute function keyed by K, coalescing concurrent requests for the
// same key into a single computation (spec §4.6's image-computation
// cache for the interval Propagator). A cache miss does not block the
// caller: it schedules compute on a WorkerPool and reports "pending"
// via TryGet's bool result, matching the scheduler's non-blocking
// insert-phase discipline.
type LazyMap[K comparable, V any] struct {
	compute   func(K) V
	keyString func(K) string
	pool      *WorkerPool

	group singleflight.Group

	mu     sync.RWMutex
	values map[K]V
}

// NewLazyMap creates a LazyMap that computes missing entries with fn,
// stringifying keys with keyString for the singleflight group, and
// dispatching each distinct computation onto pool. A nil pool gets a
// single-worker pool of its own.
func NewLazyMap[K comparable, V any](fn func(K) V, keyString func(K) string, pool *WorkerPool) *LazyMap[K, V] {
	if pool == nil {
		pool = NewWorkerPool(1)
	}
	return &LazyMap[K, V]{compute: fn, keyString: keyString, pool: pool, values: make(map[K]V)}
}

// TryGet returns the memoized value for key and true if already cached.
// On a miss it returns the zero value and false, and arranges for
// compute(key) to run as a job admitted by the worker pool (coalescing
// with any computation already in flight for key via singleflight), so
// the number of compute(key) calls running at once is bounded by the
// pool regardless of how many distinct keys miss concurrently; the
// caller is expected to poll again later.
func (m *LazyMap[K, V]) TryGet(key K) (V, bool) {
	m.mu.RLock()
	if v, ok := m.values[key]; ok {
		m.mu.RUnlock()
		return v, true
	}
	m.mu.RUnlock()

	sfKey := m.keyString(key)
	m.group.DoChan(sfKey, func() (interface{}, error) {
		var computed V
		m.pool.Run(context.Background(), []func(context.Context) error{
			func(context.Context) error {
				computed = m.compute(key)
				return nil
			},
		})
		m.mu.Lock()
		m.values[key] = computed
		m.mu.Unlock()
		return computed, nil
	})

	var zero V
	return zero, false
}

// Get blocks until key's value is computed: it tries TryGet once, then
// waits on the key's single-flight computation. Callers
// that need a synchronous answer (e.g. Propagator.Approximate) use
// this instead of handling the pending state themselves.
func (m *LazyMap[K, V]) Get(key K) V {
	if v, ok := m.TryGet(key); ok {
		return v
	}
	sfKey := m.keyString(key)
	v, _, _ := m.group.Do(sfKey, func() (interface{}, error) {
		m.mu.RLock()
		if v, ok := m.values[key]; ok {
			m.mu.RUnlock()
			return v, nil
		}
		m.mu.RUnlock()
		computed := m.compute(key)
		m.mu.Lock()
		m.values[key] = computed
		m.mu.Unlock()
		return computed, nil
	})
	return v.(V)
}

// Invalidate drops a memoized entry, forcing recomputation on next Get.
// Used when a merge changes the answer for key (e.g. an interval
// approximation that depended on an ob which just lost its rep
// status).
func (m *LazyMap[K, V]) Invalidate(key K) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}

// Clear drops every memoized entry.
func (m *LazyMap[K, V]) Clear() {
	m.mu.Lock()
	m.values = make(map[K]V)
	m.mu.Unlock()
}
