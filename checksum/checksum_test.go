package checksum

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/humuhumu33/primekernel/registry"
)

func TestAttachAndExtractRoundTrip(t *testing.T) {
	reg := registry.NewSequential(0)

	factors := []registry.Factor{
		{Prime: big.NewInt(2), Exponent: 3},
		{Prime: big.NewInt(3), Exponent: 1},
	}
	raw := big.NewInt(1)
	for _, f := range factors {
		raw.Mul(raw, new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil))
	}

	value, err := AttachChecksum(raw, factors, reg)
	require.NoError(t, err)

	core, checksumPrime, err := ExtractFactorsAndChecksum(value, reg)
	require.NoError(t, err)
	require.NotNil(t, checksumPrime)

	expected, err := CalculateChecksum(factors, reg)
	require.NoError(t, err)
	require.Zero(t, checksumPrime.Cmp(expected))

	require.Equal(t, len(factors), len(core))
	for i := range factors {
		require.Zero(t, factors[i].Prime.Cmp(core[i].Prime))
		require.Equal(t, factors[i].Exponent, core[i].Exponent)
	}
}

func TestExtractFactorsAndChecksumMalformedNoChecksumFactor(t *testing.T) {
	reg := registry.NewSequential(0)
	value := big.NewInt(2 * 2 * 3) // no factor with exponent == CHECKSUM_POWER
	_, _, err := ExtractFactorsAndChecksum(value, reg)
	require.Error(t, err)
}

func TestCalculateXorSumDeterministic(t *testing.T) {
	reg := registry.NewSequential(0)
	factors := []registry.Factor{
		{Prime: big.NewInt(2), Exponent: 3},
		{Prime: big.NewInt(5), Exponent: 2},
	}
	a, err := CalculateXorSum(factors, reg)
	require.NoError(t, err)
	b, err := CalculateXorSum(factors, reg)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
