package stream

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
)

// tagged is the internal unit threaded between stages: a value or an
// error, carrying the index it originated from so a downstream
// consumer can restore source order after a Parallel stage.
type tagged struct {
	value interface{}
	err   error
	index int
}

type stageFn func(ctx context.Context, in <-chan tagged) <-chan tagged

// Pipeline is a lazily-executed builder over source → stages →
// terminal op, matching the composition contract in §4.G. Stages
// execute once per terminal call (Collect/Sink/Reduce).
type Pipeline struct {
	cfg     Config
	source  <-chan interface{}
	stages  []stageFn
	names   []string
	metrics []*StageMetrics
	logger  *log.Logger
	monitor *BackpressureMonitor

	outcomeMu  sync.Mutex
	processed  int64
	failed     int64
	abortErr   error
	cancelExec context.CancelFunc
}

// minErrorToleranceSample is the minimum number of processed items
// before errorTolerance is consulted, so a single early failure in a
// short run can't trip the circuit breaker on noise.
const minErrorToleranceSample = 5

// trackOutcome folds one stage-level outcome into the pipeline's
// running error rate and, once cfg.ErrorTolerance is exceeded over at
// least minErrorToleranceSample items, cancels the in-flight execute
// and records a kernelerr.AbortedError. An item counts as failed here
// whether or not a downstream Catch later substitutes for it, since
// the tolerance tracks the rate of failures actually occurring, not
// the rate that reaches the terminal unhandled.
func (p *Pipeline) trackOutcome(err error) {
	p.outcomeMu.Lock()
	defer p.outcomeMu.Unlock()

	p.processed++
	if err != nil {
		p.failed++
	}
	if p.abortErr != nil || p.processed < minErrorToleranceSample {
		return
	}

	tolerance := p.cfg.ErrorTolerance
	if tolerance <= 0 {
		tolerance = DefaultConfig().ErrorTolerance
	}
	if tolerance >= 1 {
		return
	}

	rate := float64(p.failed) / float64(p.processed)
	if rate > tolerance {
		p.abortErr = &kernelerr.AbortedError{ErrorRate: rate}
		if p.cancelExec != nil {
			p.cancelExec()
		}
	}
}

// NewPipeline builds a Pipeline reading from source under cfg. A nil
// logger defaults to log.Default(), mirroring the teacher's use of the
// standard logger rather than a third-party one.
func NewPipeline(source <-chan interface{}, cfg Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{cfg: cfg, source: source, logger: logger}
}

// WithMonitor attaches a BackpressureMonitor the pipeline consults
// from OptimizePerformance; it does not itself start the monitor.
func (p *Pipeline) WithMonitor(m *BackpressureMonitor) *Pipeline {
	p.monitor = m
	return p
}

func (p *Pipeline) addStage(name string, fn stageFn) *Pipeline {
	p.names = append(p.names, name)
	p.stages = append(p.stages, fn)
	p.metrics = append(p.metrics, newStageMetrics())
	return p
}

// Metrics returns a snapshot of every stage's counters, in stage
// order, after a terminal call (Collect/Sink/Reduce) has run.
func (p *Pipeline) Metrics() []StageMetricsSnapshot {
	out := make([]StageMetricsSnapshot, len(p.metrics))
	for i, m := range p.metrics {
		out[i] = m.Snapshot()
	}
	return out
}

// Map applies fn to every item. A failing item is passed downstream
// carrying its error (a later Catch may handle it) and later items are
// still processed; the terminal op stops at the first unhandled error.
func (p *Pipeline) Map(name string, fn func(interface{}) (interface{}, error)) *Pipeline {
	idx := len(p.stages)
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err != nil {
					forward(ctx, out, t)
					continue
				}
				start := time.Now()
				memBefore := currentMemoryUsage()
				v, err := fn(t.value)
				p.metrics[idx].record(time.Since(start), int64(currentMemoryUsage())-int64(memBefore), err)
				p.trackOutcome(err)
				if err != nil {
					t.err = err
				} else {
					t.value = v
				}
				if !forward(ctx, out, t) {
					return
				}
			}
		}()
		return out
	})
}

// Filter keeps only items for which pred returns true.
func (p *Pipeline) Filter(name string, pred func(interface{}) (bool, error)) *Pipeline {
	idx := len(p.stages)
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err != nil {
					forward(ctx, out, t)
					continue
				}
				start := time.Now()
				keep, err := pred(t.value)
				p.metrics[idx].record(time.Since(start), 0, err)
				p.trackOutcome(err)
				if err != nil {
					t.err = err
					if !forward(ctx, out, t) {
						return
					}
					continue
				}
				if keep {
					if !forward(ctx, out, t) {
						return
					}
				}
			}
		}()
		return out
	})
}

// AsyncMap applies fn to every item with ctx-aware cancellation,
// sequentially (order-preserving).
func (p *Pipeline) AsyncMap(name string, fn func(context.Context, interface{}) (interface{}, error)) *Pipeline {
	idx := len(p.stages)
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err != nil {
					forward(ctx, out, t)
					continue
				}
				start := time.Now()
				v, err := fn(ctx, t.value)
				p.metrics[idx].record(time.Since(start), 0, err)
				p.trackOutcome(err)
				if err != nil {
					t.err = err
				} else {
					t.value = v
				}
				if !forward(ctx, out, t) {
					return
				}
			}
		}()
		return out
	})
}

// Batch groups every n consecutive successful items into a single
// []interface{} item; a short final batch is still emitted.
func (p *Pipeline) Batch(name string, n int) *Pipeline {
	idx := len(p.stages)
	if n <= 0 {
		n = 1
	}
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			buf := make([]interface{}, 0, n)
			index := 0
			flush := func() bool {
				if len(buf) == 0 {
					return true
				}
				start := time.Now()
				ok := forward(ctx, out, tagged{value: buf, index: index})
				p.metrics[idx].record(time.Since(start), 0, nil)
				index++
				buf = make([]interface{}, 0, n)
				return ok
			}
			for t := range in {
				if t.err != nil {
					if !flush() {
						return
					}
					if !forward(ctx, out, t) {
						return
					}
					continue
				}
				buf = append(buf, t.value)
				if len(buf) >= n {
					if !flush() {
						return
					}
				}
			}
			flush()
		}()
		return out
	})
}

// Parallel fans out fn across at most k concurrent workers (k <= 0
// uses cfg.MaxConcurrency). Output order is not preserved, per §4.G.
func (p *Pipeline) Parallel(name string, k int, fn func(interface{}) (interface{}, error)) *Pipeline {
	idx := len(p.stages)
	if k <= 0 {
		k = p.cfg.MaxConcurrency
	}
	if k <= 0 {
		k = DefaultConfig().MaxConcurrency
	}
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		var wg sync.WaitGroup
		wg.Add(k)
		for w := 0; w < k; w++ {
			go func() {
				defer wg.Done()
				for t := range in {
					if t.err != nil {
						forward(ctx, out, t)
						continue
					}
					start := time.Now()
					v, err := fn(t.value)
					p.metrics[idx].record(time.Since(start), 0, err)
					p.trackOutcome(err)
					if err != nil {
						t.err = err
					} else {
						t.value = v
					}
					if !forward(ctx, out, t) {
						return
					}
				}
			}()
		}
		go func() {
			wg.Wait()
			close(out)
		}()
		return out
	})
}

// Retry re-invokes fn up to attempts times with delay between tries
// when it returns a kernelerr.IsTransient error; the item's original
// index is preserved.
func (p *Pipeline) Retry(name string, attempts int, delay time.Duration, fn func(interface{}) (interface{}, error)) *Pipeline {
	idx := len(p.stages)
	if attempts <= 0 {
		attempts = 1
	}
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err != nil {
					forward(ctx, out, t)
					continue
				}
				var v interface{}
				var err error
				start := time.Now()
				for attempt := 0; attempt < attempts; attempt++ {
					v, err = fn(t.value)
					if err == nil || !kernelerr.IsTransient(err) {
						break
					}
					select {
					case <-time.After(delay):
					case <-ctx.Done():
						err = kernelerr.ErrCancelled
					}
				}
				p.metrics[idx].record(time.Since(start), 0, err)
				p.trackOutcome(err)
				if err != nil {
					t.err = err
				} else {
					t.value = v
				}
				if !forward(ctx, out, t) {
					return
				}
			}
		}()
		return out
	})
}

// Timeout applies fn to every item under a per-item deadline of
// timeoutMs; exceeding it surfaces kernelerr.ErrTimedOut for that item.
func (p *Pipeline) Timeout(name string, timeoutMs int, fn func(context.Context, interface{}) (interface{}, error)) *Pipeline {
	idx := len(p.stages)
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err != nil {
					forward(ctx, out, t)
					continue
				}
				itemCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
				start := time.Now()
				v, err := fn(itemCtx, t.value)
				if err == context.DeadlineExceeded {
					err = kernelerr.ErrTimedOut
				}
				cancel()
				p.metrics[idx].record(time.Since(start), 0, err)
				p.trackOutcome(err)
				if err != nil {
					t.err = err
				} else {
					t.value = v
				}
				if !forward(ctx, out, t) {
					return
				}
			}
		}()
		return out
	})
}

// Catch lets handler observe an upstream error alongside the last
// known input and either substitute a replacement value (keep==true)
// or drop the item (keep==false).
func (p *Pipeline) Catch(name string, handler func(err error, input interface{}) (replacement interface{}, keep bool)) *Pipeline {
	idx := len(p.stages)
	return p.addStage(name, func(ctx context.Context, in <-chan tagged) <-chan tagged {
		out := make(chan tagged)
		go func() {
			defer close(out)
			for t := range in {
				if t.err == nil {
					forward(ctx, out, t)
					continue
				}
				start := time.Now()
				upstreamErr := t.err
				replacement, keep := handler(t.err, t.value)
				p.metrics[idx].record(time.Since(start), 0, nil)
				p.trackOutcome(upstreamErr)
				if !keep {
					continue
				}
				t.value = replacement
				t.err = nil
				if !forward(ctx, out, t) {
					return
				}
			}
		}()
		return out
	})
}

func forward(ctx context.Context, out chan<- tagged, t tagged) bool {
	select {
	case out <- t:
		return true
	case <-ctx.Done():
		return false
	}
}

// execute runs source through every stage and returns the final
// tagged channel. It derives its own cancellable context from ctx so
// trackOutcome can unwind every in-flight stage the moment
// errorTolerance trips, without waiting for the caller's ctx.
func (p *Pipeline) execute(ctx context.Context) <-chan tagged {
	execCtx, cancel := context.WithCancel(ctx)
	p.outcomeMu.Lock()
	p.processed, p.failed, p.abortErr = 0, 0, nil
	p.cancelExec = cancel
	p.outcomeMu.Unlock()

	in := make(chan tagged)
	go func() {
		defer close(in)
		index := 0
		for v := range p.source {
			select {
			case in <- tagged{value: v, index: index}:
				index++
			case <-execCtx.Done():
				return
			}
		}
	}()

	var cur <-chan tagged = in
	for _, stage := range p.stages {
		cur = stage(execCtx, cur)
	}
	return cur
}

// abortedErr returns the kernelerr.AbortedError recorded by
// trackOutcome, if errorTolerance tripped during the last execute.
func (p *Pipeline) abortedErr() error {
	p.outcomeMu.Lock()
	defer p.outcomeMu.Unlock()
	return p.abortErr
}

// Collect runs the pipeline to completion and returns every successful
// output value in emission order; the first unhandled error aborts and
// is returned, as does crossing cfg.ErrorTolerance (kernelerr.AbortedError).
func (p *Pipeline) Collect(ctx context.Context) ([]interface{}, error) {
	var results []interface{}
	for t := range p.execute(ctx) {
		if t.err != nil {
			if aborted := p.abortedErr(); aborted != nil {
				return results, aborted
			}
			return results, t.err
		}
		results = append(results, t.value)
	}
	if aborted := p.abortedErr(); aborted != nil {
		return results, aborted
	}
	return results, nil
}

// Sink runs the pipeline to completion, invoking fn for every
// successful output value; the first error (from the pipeline or fn)
// aborts and is returned, as does crossing cfg.ErrorTolerance.
func (p *Pipeline) Sink(ctx context.Context, fn func(interface{}) error) error {
	for t := range p.execute(ctx) {
		if t.err != nil {
			if aborted := p.abortedErr(); aborted != nil {
				return aborted
			}
			return t.err
		}
		if err := fn(t.value); err != nil {
			return err
		}
	}
	if aborted := p.abortedErr(); aborted != nil {
		return aborted
	}
	return nil
}

// Reduce folds every successful output value into acc via fn, left to
// right in emission order; crossing cfg.ErrorTolerance surfaces a
// kernelerr.AbortedError.
func (p *Pipeline) Reduce(ctx context.Context, init interface{}, fn func(acc, v interface{}) (interface{}, error)) (interface{}, error) {
	acc := init
	for t := range p.execute(ctx) {
		if t.err != nil {
			if aborted := p.abortedErr(); aborted != nil {
				return acc, aborted
			}
			return acc, t.err
		}
		next, err := fn(acc, t.value)
		if err != nil {
			return acc, err
		}
		acc = next
	}
	if aborted := p.abortedErr(); aborted != nil {
		return acc, aborted
	}
	return acc, nil
}
