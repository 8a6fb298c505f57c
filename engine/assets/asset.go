package assets

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// State tells whether an asset still owns its CPU payload.
type State uint8

const (
	// StateLive assets carry their full payload.
	StateLive State = iota
	// StateDummy assets had their payload released after a GPU counterpart was
	// cached. Identity and cache key stay valid.
	StateDummy
)

func (s State) String() string {
	if s == StateDummy {
		return "dummy"
	}
	return "live"
}

// Asset is a loaded content unit. Concrete assets embed Base.
type Asset interface {
	ID() core.Identifier
	Type() Type
	CacheKey() string
	IsCached() bool
	State() State
	// ConvertToDummy releases the payload. Only the manager calls it, after the
	// GPU counterpart has been cached.
	ConvertToDummy()
	// ReadPayload runs fn while the payload cannot be released. It returns
	// false, without calling fn, for a dummy.
	ReadPayload(fn func()) bool
	Grab() int32
	Drop() int32
	RefCount() int32
	Source() string
	LoadedAt() time.Time

	base() *Base
}

// Base holds the bookkeeping shared by every asset: identity, cache key,
// cached flag, state tag and the strong-reference count.
type Base struct {
	idOnce sync.Once
	id     core.Identifier

	mu       sync.RWMutex
	key      string
	source   string
	loadedAt time.Time

	// guards the payload fields of the embedding asset
	payloadMu sync.RWMutex

	cached   atomic.Bool
	dummy    atomic.Bool
	refCount atomic.Int32
}

func (b *Base) base() *Base { return b }

func (b *Base) ID() core.Identifier {
	b.idOnce.Do(func() {
		b.id = core.NewIdentifier()
	})
	return b.id
}

func (b *Base) CacheKey() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.key
}

func (b *Base) setCacheKey(key string) {
	b.mu.Lock()
	b.key = key
	b.mu.Unlock()
}

// Source is the name of the file the asset was loaded from, if any.
func (b *Base) Source() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.source
}

func (b *Base) LoadedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadedAt
}

func (b *Base) stamp(source string, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.source == "" {
		b.source = source
		b.loadedAt = at
	}
}

func (b *Base) IsCached() bool {
	return b.cached.Load()
}

func (b *Base) setCached(cached bool) {
	b.cached.Store(cached)
}

func (b *Base) State() State {
	if b.dummy.Load() {
		return StateDummy
	}
	return StateLive
}

func (b *Base) ReadPayload(fn func()) bool {
	b.payloadMu.RLock()
	defer b.payloadMu.RUnlock()
	if b.dummy.Load() {
		return false
	}
	fn()
	return true
}

// releasePayload runs clear under the payload lock and marks the asset a
// dummy. Readers inside ReadPayload finish first.
func (b *Base) releasePayload(clear func()) {
	b.payloadMu.Lock()
	defer b.payloadMu.Unlock()
	clear()
	b.dummy.Store(true)
}

// Grab takes a strong reference and returns the new count.
func (b *Base) Grab() int32 {
	return b.refCount.Add(1)
}

// Drop releases a strong reference and returns the new count. Dropping below
// zero is a bookkeeping bug; it is logged and the count is clamped.
func (b *Base) Drop() int32 {
	n := b.refCount.Add(-1)
	if n < 0 {
		core.LogError("asset %s dropped more often than grabbed", core.ShortIdentifier(b.ID()))
		b.refCount.CompareAndSwap(n, 0)
		return 0
	}
	return n
}

func (b *Base) RefCount() int32 {
	return b.refCount.Load()
}
