package stream

// SuggestedConfig is the advisory output of OptimizePerformance: a
// candidate Config the caller may choose to apply. Per the Open
// Question decision recorded in DESIGN.md, OptimizePerformance never
// mutates the Pipeline's live Config itself.
type SuggestedConfig struct {
	Config  Config
	Reasons []string
}

// OptimizePerformance reads the pipeline's current per-stage metrics
// and, when a backpressure monitor is attached, samples current heap
// usage against the memory limit, and returns a suggested Config:
// smaller chunk size under high memory pressure, larger concurrency
// under low throughput, matching §4.G.
func (p *Pipeline) OptimizePerformance() SuggestedConfig {
	suggested := p.cfg
	var reasons []string

	var totalItems, totalErrors uint64
	var worstAvgMs float64
	for i, snap := range p.Metrics() {
		totalItems += snap.Items
		totalErrors += snap.Errors
		if snap.AvgTimeMs > worstAvgMs {
			worstAvgMs = snap.AvgTimeMs
		}
		_ = i
	}

	if p.monitor != nil {
		limit := p.cfg.MemoryLimitBytes
		if limit == 0 {
			limit = DefaultConfig().MemoryLimitBytes
		}
		ratio := float64(currentMemoryUsage()) / float64(limit)
		if ratio > 0.85 {
			if suggested.DefaultChunkSize > 1 {
				suggested.DefaultChunkSize = suggested.DefaultChunkSize / 2
			}
			reasons = append(reasons, "memory usage above 0.85: halving chunk size")
		}
	}

	if totalItems > 0 {
		throughput := float64(totalItems) / secondsOrOne(worstAvgMs)
		if throughput < 1000 {
			suggested.MaxConcurrency = suggested.MaxConcurrency + 1
			reasons = append(reasons, "throughput below 1000 items/s: increasing concurrency")
		}
	}

	return SuggestedConfig{Config: suggested, Reasons: reasons}
}

func secondsOrOne(ms float64) float64 {
	if ms <= 0 {
		return 1
	}
	return ms / 1000.0
}
