package stream

import (
	"context"
	"math/big"

	"github.com/humuhumu33/primekernel/chunk"
	"github.com/humuhumu33/primekernel/registry"
)

// EncodeTextStream encodes text as a channel of chunk values, one per
// rune, closing the channel once every chunk has been sent or ctx is
// cancelled.
func EncodeTextStream(ctx context.Context, text string, reg registry.Registry) (<-chan *big.Int, <-chan error) {
	out := make(chan *big.Int)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		chunks, err := chunk.EncodeText(text, reg)
		if err != nil {
			errs <- err
			return
		}
		for _, c := range chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return out, errs
}

// DecodeChunkStream decodes every value from source as it arrives,
// buffering nothing beyond the single in-flight chunk, since chunk
// decode is self-contained (no multi-chunk assembly required).
func DecodeChunkStream(ctx context.Context, source <-chan *big.Int, reg registry.Registry) (<-chan *chunk.DecodedChunk, <-chan error) {
	out := make(chan *chunk.DecodedChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case c, ok := <-source:
				if !ok {
					return
				}
				decoded, err := chunk.DecodeChunk(c, reg)
				if err != nil {
					errs <- err
					return
				}
				select {
				case out <- decoded:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return out, errs
}

// DecodeTextStream decodes every data-schema chunk from source as it
// arrives and emits its rune immediately in arrival order (unlike
// chunk.DecodeText, this does not re-sort by position, since a stream
// has no bounded lookahead to sort over); non-data chunks are skipped.
func DecodeTextStream(ctx context.Context, source <-chan *big.Int, reg registry.Registry) (<-chan rune, <-chan error) {
	out := make(chan rune)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case c, ok := <-source:
				if !ok {
					return
				}
				decoded, err := chunk.DecodeChunk(c, reg)
				if err != nil {
					errs <- err
					return
				}
				if decoded.Type != chunk.DataType {
					continue
				}
				fields := decoded.Fields.(chunk.DataFields)
				select {
				case out <- rune(fields.Value):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return out, errs
}

// ExecuteStreamingProgram decodes a stream of operation chunks and
// invokes exec for each, in arrival order, stopping on the first
// error.
func ExecuteStreamingProgram(ctx context.Context, source <-chan *big.Int, reg registry.Registry, exec func(chunk.OperationFields) error) error {
	decoded, errs := DecodeChunkStream(ctx, source, reg)
	for d := range decoded {
		if d.Type != chunk.OperationType {
			continue
		}
		if err := exec(d.Fields.(chunk.OperationFields)); err != nil {
			return err
		}
	}
	if err := <-errs; err != nil {
		return err
	}
	return nil
}
