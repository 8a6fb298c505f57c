package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-assets/engine/containers"
)

const AVG_COUNT = 30

// Metrics counts cache and I/O traffic of an asset manager. Counters are
// atomic; the rolling load-time window is guarded by its own mutex.
type Metrics struct {
	cacheHits     atomic.Uint64
	cacheMisses   atomic.Uint64
	loads         atomic.Uint64
	loadFailures  atomic.Uint64
	writes        atomic.Uint64
	writeFailures atomic.Uint64
	evictions     atomic.Uint64

	mu        sync.Mutex
	loadTimes *containers.RingQueue[float64]
}

type MetricsSnapshot struct {
	CacheHits     uint64
	CacheMisses   uint64
	Loads         uint64
	LoadFailures  uint64
	Writes        uint64
	WriteFailures uint64
	Evictions     uint64
	// Average of the last AVG_COUNT successful loads, in milliseconds.
	LoadMSAvg float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		loadTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

func (m *Metrics) CacheHit()     { m.cacheHits.Add(1) }
func (m *Metrics) CacheMiss()    { m.cacheMisses.Add(1) }
func (m *Metrics) LoadFailed()   { m.loadFailures.Add(1) }
func (m *Metrics) Written()      { m.writes.Add(1) }
func (m *Metrics) WriteFailed()  { m.writeFailures.Add(1) }
func (m *Metrics) Evicted(n int) { m.evictions.Add(uint64(n)) }

// Loaded records a successful load that took elapsed.
func (m *Metrics) Loaded(elapsed time.Duration) {
	m.loads.Add(1)
	m.mu.Lock()
	m.loadTimes.Push(float64(elapsed.Microseconds()) / 1000.0)
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		CacheHits:     m.cacheHits.Load(),
		CacheMisses:   m.cacheMisses.Load(),
		Loads:         m.loads.Load(),
		LoadFailures:  m.loadFailures.Load(),
		Writes:        m.writes.Load(),
		WriteFailures: m.writeFailures.Load(),
		Evictions:     m.evictions.Load(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.loadTimes.Len(); n > 0 {
		total := 0.0
		m.loadTimes.Each(func(ms float64) { total += ms })
		s.LoadMSAvg = total / float64(n)
	}
	return s
}
