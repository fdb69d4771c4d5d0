package search

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks counters for a single Explore run. All fields are safe for
// concurrent increment; Snapshot takes a consistent copy for logging.
type Metrics struct {
	mu sync.Mutex

	started time.Time
	ended   time.Time

	levelsProcessed int64
	nodesAllocated  int64
	nodesExpanded   int64
	nodesPruned     int64
}

// NewMetrics creates a metrics collector stamped with the current time.
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

// RecordLevel increments the level counter and the allocation/expansion/
// pruning counters for one call to searchSubnodes.
func (m *Metrics) RecordLevel(expanded, pruned int64) {
	atomic.AddInt64(&m.levelsProcessed, 1)
	atomic.AddInt64(&m.nodesExpanded, expanded)
	atomic.AddInt64(&m.nodesPruned, pruned)
	atomic.AddInt64(&m.nodesAllocated, expanded*2)
}

// Finish stamps the end time. Call once Explore returns.
func (m *Metrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = time.Now()
}

// Snapshot is an immutable copy of the metrics at the time it was taken.
type Snapshot struct {
	Duration        time.Duration
	LevelsProcessed int64
	NodesAllocated  int64
	NodesExpanded   int64
	NodesPruned     int64
}

// Snapshot returns a consistent copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	ended := m.ended
	if ended.IsZero() {
		ended = time.Now()
	}
	m.mu.Unlock()

	return Snapshot{
		Duration:        ended.Sub(m.started),
		LevelsProcessed: atomic.LoadInt64(&m.levelsProcessed),
		NodesAllocated:  atomic.LoadInt64(&m.nodesAllocated),
		NodesExpanded:   atomic.LoadInt64(&m.nodesExpanded),
		NodesPruned:     atomic.LoadInt64(&m.nodesPruned),
	}
}
