// Package stream implements the chunked stream processing and
// Pipeline layer (§4.G): bounded-buffer chunk accumulation, a staged
// pipeline builder with per-stage metrics and backpressure, and an
// encoding bridge over the chunk codec.
package stream

import "time"

// Config holds the tunables §4.G names: chunk accumulation size,
// backpressure sampling, and pipeline concurrency defaults.
type Config struct {
	// DefaultChunkSize is how many items processChunkedStream
	// accumulates before invoking a Processor.
	DefaultChunkSize int

	// MetricsInterval is how often the backpressure monitor samples
	// memory usage.
	MetricsInterval time.Duration

	// BackpressureThreshold is the used/limit ratio above which
	// upstream producers are paused.
	BackpressureThreshold float64

	// BackpressureHysteresis is the margin below BackpressureThreshold
	// producers must fall to before resuming.
	BackpressureHysteresis float64

	// MemoryLimitBytes is the ceiling the backpressure monitor
	// compares sampled usage against.
	MemoryLimitBytes uint64

	// MaxConcurrency bounds a Parallel stage's fan-out.
	MaxConcurrency int

	// ErrorTolerance is the fraction of processed items allowed to fail
	// (across every stage, whether or not a later Catch substitutes for
	// the failure) before Pipeline.execute aborts the run with a
	// kernelerr.AbortedError. Zero or unset falls back to
	// DefaultConfig's value; 1.0 or above disables the check entirely.
	ErrorTolerance float64
}

// DefaultConfig returns the configuration values named in §4.G:
// chunk size 1000, metrics interval 5s, backpressure threshold 0.8
// with 0.1 hysteresis, max concurrency 4, error tolerance 0.5.
func DefaultConfig() Config {
	return Config{
		DefaultChunkSize:       1000,
		MetricsInterval:        5000 * time.Millisecond,
		BackpressureThreshold:  0.8,
		BackpressureHysteresis: 0.1,
		MemoryLimitBytes:       512 * 1024 * 1024,
		MaxConcurrency:         4,
		ErrorTolerance:         0.5,
	}
}
