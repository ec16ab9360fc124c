package stream

import (
	"context"
	"time"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
)

// ChunkContext carries the bookkeeping a Processor sees alongside each
// accumulated buffer: its ordinal index, when accumulation for it
// started, the previous chunk's result (nil for the first), and an
// opaque metadata map a Processor may read or write.
type ChunkContext struct {
	Index     int
	StartTime time.Time
	Previous  interface{}
	Metadata  map[string]interface{}
}

// Processor turns an accumulated chunk buffer into zero or more output
// items, and flushes any remainder once the source is exhausted.
type Processor interface {
	ProcessChunk(ctx context.Context, buffer []interface{}, chunkCtx ChunkContext) ([]interface{}, error)
	Flush(ctx context.Context, chunkCtx ChunkContext) ([]interface{}, error)
}

// ProcessChunkedStream consumes source item by item, accumulating into
// a buffer of size cfg.DefaultChunkSize; when full, it invokes
// processor.ProcessChunk and forwards the results, then clears the
// buffer. On source exhaustion it passes any partial buffer to
// processor.ProcessChunk, then invokes processor.Flush and forwards the
// remainder, then closes both returned channels. Cancelling ctx
// unwinds with kernelerr.ErrCancelled on the error channel.
func ProcessChunkedStream(ctx context.Context, source <-chan interface{}, processor Processor, cfg Config) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error, 1)

	chunkSize := cfg.DefaultChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultConfig().DefaultChunkSize
	}

	go func() {
		defer close(out)
		defer close(errs)

		buffer := make([]interface{}, 0, chunkSize)
		index := 0
		var previous interface{}

		emit := func(items []interface{}) bool {
			for _, item := range items {
				select {
				case out <- item:
				case <-ctx.Done():
					errs <- kernelerr.ErrCancelled
					return false
				}
			}
			return true
		}

		for {
			select {
			case item, ok := <-source:
				if !ok {
					if len(buffer) > 0 {
						chunkCtx := ChunkContext{Index: index, StartTime: time.Now(), Previous: previous, Metadata: map[string]interface{}{}}
						results, err := processor.ProcessChunk(ctx, buffer, chunkCtx)
						if err != nil {
							errs <- err
							return
						}
						if !emit(results) {
							return
						}
						if len(results) > 0 {
							previous = results[len(results)-1]
						}
						index++
					}
					chunkCtx := ChunkContext{Index: index, StartTime: time.Now(), Previous: previous, Metadata: map[string]interface{}{}}
					results, err := processor.Flush(ctx, chunkCtx)
					if err != nil {
						errs <- err
						return
					}
					emit(results)
					return
				}

				buffer = append(buffer, item)
				if len(buffer) >= chunkSize {
					chunkCtx := ChunkContext{Index: index, StartTime: time.Now(), Previous: previous, Metadata: map[string]interface{}{}}
					results, err := processor.ProcessChunk(ctx, buffer, chunkCtx)
					if err != nil {
						errs <- err
						return
					}
					if !emit(results) {
						return
					}
					if len(results) > 0 {
						previous = results[len(results)-1]
					}
					buffer = make([]interface{}, 0, chunkSize)
					index++
				}
			case <-ctx.Done():
				errs <- kernelerr.ErrCancelled
				return
			}
		}
	}()

	return out, errs
}
