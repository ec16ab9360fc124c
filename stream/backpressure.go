package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// BackpressureMonitor samples memory usage at cfg.MetricsInterval and
// toggles a paused state producers are expected to consult before
// submitting more work. The effect side (pause/resume) is exposed as
// callbacks invoked on transition, matching the producer-facing
// pause()/resume() contract in §4.G.
type BackpressureMonitor struct {
	cfg Config

	paused atomic.Bool
	events atomic.Uint64

	mu       sync.Mutex
	onPause  func()
	onResume func()
	resumeCh chan struct{} // closed on each pause->resume transition

	stop chan struct{}
	done chan struct{}
}

// NewBackpressureMonitor constructs a monitor with the given config
// and pause/resume callbacks (either may be nil).
func NewBackpressureMonitor(cfg Config, onPause, onResume func()) *BackpressureMonitor {
	return &BackpressureMonitor{
		cfg:      cfg,
		onPause:  onPause,
		onResume: onResume,
		resumeCh: make(chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins periodic sampling until ctx is cancelled or Stop is
// called.
func (m *BackpressureMonitor) Start(ctx context.Context) {
	interval := m.cfg.MetricsInterval
	if interval <= 0 {
		interval = DefaultConfig().MetricsInterval
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts sampling.
func (m *BackpressureMonitor) Stop() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	<-m.done
}

func (m *BackpressureMonitor) sample() {
	limit := m.cfg.MemoryLimitBytes
	if limit == 0 {
		limit = DefaultConfig().MemoryLimitBytes
	}
	used := currentMemoryUsage()
	ratio := float64(used) / float64(limit)

	threshold := m.cfg.BackpressureThreshold
	if threshold <= 0 {
		threshold = DefaultConfig().BackpressureThreshold
	}
	hysteresis := m.cfg.BackpressureHysteresis

	if !m.paused.Load() && ratio >= threshold {
		m.paused.Store(true)
		m.events.Add(1)
		if m.onPause != nil {
			m.onPause()
		}
		return
	}
	if m.paused.Load() && ratio <= threshold-hysteresis {
		m.paused.Store(false)
		if m.onResume != nil {
			m.onResume()
		}
		m.mu.Lock()
		close(m.resumeCh)
		m.resumeCh = make(chan struct{})
		m.mu.Unlock()
	}
}

// Paused reports the monitor's current pause state.
func (m *BackpressureMonitor) Paused() bool { return m.paused.Load() }

// Events returns the number of pause transitions observed so far; it
// only ever increases.
func (m *BackpressureMonitor) Events() uint64 { return m.events.Load() }

// Drain blocks until the paused state clears or ctx is cancelled.
func (m *BackpressureMonitor) Drain(ctx context.Context) error {
	for m.paused.Load() {
		m.mu.Lock()
		ch := m.resumeCh
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
