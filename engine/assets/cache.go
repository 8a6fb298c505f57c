package assets

import "sync"

// MultiCache is a key to values multimap. Values under one key keep their
// insertion order and keys are enumerated in first-insertion order. Lookups
// take a shared lock; insertion and removal take the exclusive lock.
//
// The optional greet and dispose hooks run under the exclusive lock when a
// value enters or leaves the cache.
type MultiCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K][]V
	keys    []K
	size    int

	equal   func(a, b V) bool
	greet   func(V)
	dispose func(V)
}

type CacheOption[K comparable, V any] func(*MultiCache[K, V])

func WithGreeting[K comparable, V any](fn func(V)) CacheOption[K, V] {
	return func(c *MultiCache[K, V]) {
		c.greet = fn
	}
}

func WithDisposal[K comparable, V any](fn func(V)) CacheOption[K, V] {
	return func(c *MultiCache[K, V]) {
		c.dispose = fn
	}
}

// NewMultiCache builds a cache comparing values with equal.
func NewMultiCache[K comparable, V any](equal func(a, b V) bool, opts ...CacheOption[K, V]) *MultiCache[K, V] {
	c := &MultiCache[K, V]{
		entries: make(map[K][]V),
		equal:   equal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Insert appends v under k. It returns false when the identical value is
// already stored under k.
func (c *MultiCache[K, V]) Insert(k K, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, ok := c.entries[k]
	for _, existing := range values {
		if c.equal(existing, v) {
			return false
		}
	}
	if !ok {
		c.keys = append(c.keys, k)
	}
	c.entries[k] = append(values, v)
	c.size++
	if c.greet != nil {
		c.greet(v)
	}
	return true
}

// Find returns a copy of the values stored under k, oldest first.
func (c *MultiCache[K, V]) Find(k K) []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := c.entries[k]
	if len(values) == 0 {
		return nil
	}
	return append([]V(nil), values...)
}

// FindFirst returns the oldest value stored under k.
func (c *MultiCache[K, V]) FindFirst(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero V
	values := c.entries[k]
	if len(values) == 0 {
		return zero, false
	}
	return values[0], true
}

func (c *MultiCache[K, V]) Contains(k K, v V) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(k, v) >= 0
}

// RemoveObject removes v from under k.
func (c *MultiCache[K, V]) RemoveObject(v V, k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.removeLocked(v, k) {
		return false
	}
	if c.dispose != nil {
		c.dispose(v)
	}
	return true
}

// ChangeObjectKey moves v from oldKey to newKey without running the greet
// or dispose hooks.
func (c *MultiCache[K, V]) ChangeObjectKey(v V, oldKey, newKey K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if oldKey == newKey {
		return c.indexOf(oldKey, v) >= 0
	}
	if !c.removeLocked(v, oldKey) {
		return false
	}
	if _, ok := c.entries[newKey]; !ok {
		c.keys = append(c.keys, newKey)
	}
	c.entries[newKey] = append(c.entries[newKey], v)
	c.size++
	return true
}

// Clear empties the cache, disposing every value.
func (c *MultiCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dispose != nil {
		for _, k := range c.keys {
			for _, v := range c.entries[k] {
				c.dispose(v)
			}
		}
	}
	c.entries = make(map[K][]V)
	c.keys = nil
	c.size = 0
}

// Size is the total number of stored values.
func (c *MultiCache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Range visits every key/value pair in key insertion order, stopping when fn
// returns false. fn must not modify the cache.
func (c *MultiCache[K, V]) Range(fn func(k K, v V) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, k := range c.keys {
		for _, v := range c.entries[k] {
			if !fn(k, v) {
				return
			}
		}
	}
}

func (c *MultiCache[K, V]) indexOf(k K, v V) int {
	for i, existing := range c.entries[k] {
		if c.equal(existing, v) {
			return i
		}
	}
	return -1
}

func (c *MultiCache[K, V]) removeLocked(v V, k K) bool {
	ix := c.indexOf(k, v)
	if ix < 0 {
		return false
	}
	values := c.entries[k]
	values = append(values[:ix:ix], values[ix+1:]...)
	if len(values) == 0 {
		delete(c.entries, k)
		for i, key := range c.keys {
			if key == k {
				c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
				break
			}
		}
	} else {
		c.entries[k] = values
	}
	c.size--
	return true
}
