package stream

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
)

// StageMetrics accumulates the per-stage counters §4.G requires
// (items, avg time, errors, memory), plus p95 latency as a bonus
// derived statistic.
type StageMetrics struct {
	Items  atomic.Uint64
	Errors atomic.Uint64

	mu          sync.Mutex
	durationsMs []float64
	memoryDelta []float64
}

// StageMetricsSnapshot is the read-only view returned by Snapshot.
type StageMetricsSnapshot struct {
	Items     uint64
	Errors    uint64
	AvgTimeMs float64
	P95TimeMs float64
	AvgMemory float64
}

func newStageMetrics() *StageMetrics {
	return &StageMetrics{}
}

func (m *StageMetrics) record(d time.Duration, memDelta int64, err error) {
	m.Items.Add(1)
	if err != nil {
		m.Errors.Add(1)
	}
	m.mu.Lock()
	m.durationsMs = append(m.durationsMs, float64(d.Microseconds())/1000.0)
	m.memoryDelta = append(m.memoryDelta, float64(memDelta))
	m.mu.Unlock()
}

// Snapshot computes avg/p95 latency and average memory delta via
// montanaflynn/stats over the samples recorded so far.
func (m *StageMetrics) Snapshot() StageMetricsSnapshot {
	m.mu.Lock()
	durations := append([]float64(nil), m.durationsMs...)
	mem := append([]float64(nil), m.memoryDelta...)
	m.mu.Unlock()

	snap := StageMetricsSnapshot{
		Items:  m.Items.Load(),
		Errors: m.Errors.Load(),
	}
	if len(durations) == 0 {
		return snap
	}
	if avg, err := stats.Mean(durations); err == nil {
		snap.AvgTimeMs = avg
	}
	if p95, err := stats.Percentile(durations, 95); err == nil {
		snap.P95TimeMs = p95
	}
	if avgMem, err := stats.Mean(mem); err == nil {
		snap.AvgMemory = avgMem
	}
	return snap
}

// currentMemoryUsage reads live heap allocation via runtime.MemStats --
// the pack carries no external memory-sampling library, and this is
// the idiomatic stdlib source for both backpressure sampling and
// per-stage memory-delta tracking.
func currentMemoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}
