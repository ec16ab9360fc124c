package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	chunkCalls int
	flushCalls int
}

func (c *countingProcessor) ProcessChunk(ctx context.Context, buffer []interface{}, chunkCtx ChunkContext) ([]interface{}, error) {
	c.chunkCalls++
	return buffer, nil
}

func (c *countingProcessor) Flush(ctx context.Context, chunkCtx ChunkContext) ([]interface{}, error) {
	c.flushCalls++
	return nil, nil
}

func sourceOf(n int) <-chan interface{} {
	ch := make(chan interface{})
	go func() {
		defer close(ch)
		for i := 0; i < n; i++ {
			ch <- i
		}
	}()
	return ch
}

func TestProcessChunkedStreamChunkCountMatchesCeilDiv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultChunkSize = 3

	proc := &countingProcessor{}
	out, errs := ProcessChunkedStream(context.Background(), sourceOf(10), proc, cfg)

	var received []interface{}
	for v := range out {
		received = append(received, v)
	}
	require.NoError(t, <-errs)
	require.Len(t, received, 10)
	// 10 items / chunk size 3 = 3 full chunks + 1 partial chunk, ceil(10/3) = 4,
	// followed by a single flush.
	require.Equal(t, 4, proc.chunkCalls)
	require.Equal(t, 1, proc.flushCalls)
}

func TestProcessChunkedStreamFlushAlwaysOccursOnEmptySource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultChunkSize = 5

	proc := &countingProcessor{}
	out, errs := ProcessChunkedStream(context.Background(), sourceOf(0), proc, cfg)

	for range out {
	}
	require.NoError(t, <-errs)
	require.Equal(t, 0, proc.chunkCalls)
	require.Equal(t, 1, proc.flushCalls)
}

func TestProcessChunkedStreamCancellationUnwinds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultChunkSize = 1000

	ctx, cancel := context.WithCancel(context.Background())
	proc := &countingProcessor{}
	source := make(chan interface{})
	out, errs := ProcessChunkedStream(ctx, source, proc, cfg)

	cancel()
	for range out {
	}
	err := <-errs
	require.Error(t, err)
}
