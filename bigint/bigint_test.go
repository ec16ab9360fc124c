package bigint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteArrayRoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(-1),
		big.NewInt(255),
		big.NewInt(-255),
		big.NewInt(256),
		big.NewInt(-256),
		big.NewInt(1<<16 - 1),
		big.NewInt(-(1<<16 - 1)),
		big.NewInt(1 << 16),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 53), big.NewInt(1)),
		new(big.Int).Lsh(big.NewInt(1), 100),
		new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100)),
	}
	for _, v := range values {
		b := ToByteArray(v)
		got := FromByteArray(b)
		require.Zerof(t, got.Cmp(v), "round trip of %s: got %s", v, got)
	}
}

func TestBitLength(t *testing.T) {
	require.Equal(t, 1, BitLength(big.NewInt(0)))
	require.Equal(t, 1, BitLength(big.NewInt(1)))
	require.Equal(t, 8, BitLength(big.NewInt(255)))
	require.Equal(t, 9, BitLength(big.NewInt(256)))
}

func TestGetSetBit(t *testing.T) {
	n := big.NewInt(0)
	set, err := SetBit(n, 3, 1)
	require.NoError(t, err)
	require.Zero(t, set.Cmp(big.NewInt(8)))

	bit, err := GetBit(set, 3)
	require.NoError(t, err)
	require.Equal(t, uint(1), bit)

	_, err = GetBit(set, -1)
	require.Error(t, err)
}

func TestCountTrailingAndLeadingZeros(t *testing.T) {
	tz, err := CountTrailingZeros(big.NewInt(8))
	require.NoError(t, err)
	require.Equal(t, uint64(3), tz)

	lz, err := CountLeadingZeros(big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, uint64(63), lz)

	_, err = CountTrailingZeros(big.NewInt(-1))
	require.Error(t, err)
}

func TestIsProbablePrimeKnownValues(t *testing.T) {
	primes := []int64{2, 3, 5, 7, 97, 104729}
	for _, p := range primes {
		require.Truef(t, IsProbablePrime(big.NewInt(p), 0), "%d should be prime", p)
	}

	composites := []int64{1, 0, -7, 4, 100, 104730}
	for _, c := range composites {
		require.Falsef(t, IsProbablePrime(big.NewInt(c), 0), "%d should not be prime", c)
	}
}

func TestGetRandomBigIntWithinBounds(t *testing.T) {
	for i := 0; i < 20; i++ {
		v, err := GetRandomBigInt(16)
		require.NoError(t, err)
		require.True(t, v.Sign() >= 0)
		require.True(t, v.Cmp(new(big.Int).Lsh(big.NewInt(1), 16)) < 0)
	}
}

func TestGetRandomBigIntRejectsNonPositiveBits(t *testing.T) {
	_, err := GetRandomBigInt(0)
	require.Error(t, err)
}
