package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/humuhumu33/primekernel/registry"
)

func TestEncodeTextStreamDecodeTextStreamRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)
	ctx := context.Background()

	chunks, errs := EncodeTextStream(ctx, "hi", reg)

	var runes []rune
	decodedRunes, decodeErrs := DecodeTextStream(ctx, chunks, reg)
	for r := range decodedRunes {
		runes = append(runes, r)
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-decodeErrs)
	require.Equal(t, []rune("hi"), runes)
}
