package chunk

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/humuhumu33/primekernel/registry"
)

var bigIntComparer = cmp.Comparer(func(x, y *big.Int) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.Cmp(y) == 0
})

func TestEncodeDataDecodeRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)

	cases := []struct{ position, value int64 }{
		{0, 65},
		{7, 127},
		{8, 0},
		{1000, 255},
	}
	for _, c := range cases {
		chunk, err := EncodeData(c.position, c.value, reg)
		require.NoError(t, err)

		decoded, err := DecodeChunk(chunk, reg)
		require.NoError(t, err)
		require.Equal(t, DataType, decoded.Type)

		fields := decoded.Fields.(DataFields)
		require.Equal(t, uint64(c.position), fields.Position)
		require.Equal(t, uint64(c.value), fields.Value)
	}
}

func TestEncodeDataRejectsNegative(t *testing.T) {
	reg := registry.NewSequential(0)
	_, err := EncodeData(-1, 0, reg)
	require.Error(t, err)
	_, err = EncodeData(0, -1, reg)
	require.Error(t, err)
}

func TestEncodeTextDecodeTextRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)
	chunks, err := EncodeText("AB", reg)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	text, err := DecodeText(chunks, reg)
	require.NoError(t, err)
	require.Equal(t, "AB", text)
}

func TestDecodeTextLaterChunkOverridesEarlier(t *testing.T) {
	reg := registry.NewSequential(0)
	first, err := EncodeData(0, int64('A'), reg)
	require.NoError(t, err)
	second, err := EncodeData(0, int64('Z'), reg)
	require.NoError(t, err)

	text, err := DecodeText([]*big.Int{first, second}, reg)
	require.NoError(t, err)
	require.Equal(t, "Z", text)
}

func TestEncodeOperationWithoutOperandRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)
	chunk, err := EncodeOperation(HaltOpcode, nil, reg)
	require.NoError(t, err)

	decoded, err := DecodeChunk(chunk, reg)
	require.NoError(t, err)
	require.Equal(t, OperationType, decoded.Type)

	fields := decoded.Fields.(OperationFields)
	require.Zero(t, fields.Opcode.Cmp(big.NewInt(int64(HaltOpcode))))
	require.Nil(t, fields.Operand)
}

func TestEncodeOperationWithOperandRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)
	operand := int64(42)
	chunk, err := EncodeOperation(LoadOpcode, &operand, reg)
	require.NoError(t, err)

	decoded, err := DecodeChunk(chunk, reg)
	require.NoError(t, err)
	fields := decoded.Fields.(OperationFields)
	require.NotNil(t, fields.Operand)
	require.Equal(t, uint64(42), *fields.Operand)
}

func TestDecodeChunkBlockHeaderFieldsMatchExpected(t *testing.T) {
	reg := registry.NewSequential(0)
	body, err := EncodeText("go", reg)
	require.NoError(t, err)
	block, err := EncodeBlock(body, reg)
	require.NoError(t, err)

	decoded, err := DecodeChunk(block[0], reg)
	require.NoError(t, err)

	want := BlockHeaderFields{Tag: big.NewInt(7), Length: 2}
	got := decoded.Fields.(BlockHeaderFields)
	if diff := cmp.Diff(want, got, bigIntComparer); diff != "" {
		t.Errorf("block header fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeBlockPrependsHeaderWithLength(t *testing.T) {
	reg := registry.NewSequential(0)
	body, err := EncodeText("hi", reg)
	require.NoError(t, err)

	block, err := EncodeBlock(body, reg)
	require.NoError(t, err)
	require.Len(t, block, 3)

	decoded, err := DecodeChunk(block[0], reg)
	require.NoError(t, err)
	require.Equal(t, BlockHeaderType, decoded.Type)
	fields := decoded.Fields.(BlockHeaderFields)
	require.Zero(t, fields.Tag.Cmp(big.NewInt(7)))
	require.Equal(t, uint64(2), fields.Length)
}

func TestEncodeNttBlockPrependsHeaderTaggedEleven(t *testing.T) {
	reg := registry.NewSequential(0)
	body, err := EncodeText("x", reg)
	require.NoError(t, err)

	block, err := EncodeNttBlock(body, reg)
	require.NoError(t, err)

	decoded, err := DecodeChunk(block[0], reg)
	require.NoError(t, err)
	require.Equal(t, BlockHeaderType, decoded.Type)
	fields := decoded.Fields.(BlockHeaderFields)
	require.Zero(t, fields.Tag.Cmp(big.NewInt(11)))
	require.Equal(t, uint64(1), fields.Length)
}

func TestDecodeChunkMalformedMissingChecksum(t *testing.T) {
	reg := registry.NewSequential(0)
	_, err := DecodeChunk(big.NewInt(2*2*3), reg)
	require.Error(t, err)
}

func TestValidateChunkStructureEmpty(t *testing.T) {
	err := ValidateChunkStructure(nil)
	require.Error(t, err)
}
