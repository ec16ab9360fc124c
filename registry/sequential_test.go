package registry

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequentialGetPrime(t *testing.T) {
	r := NewSequential(0)
	want := []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	for i, w := range want {
		p, err := r.GetPrime(uint64(i))
		require.NoError(t, err)
		require.Zerof(t, p.Cmp(big.NewInt(w)), "index %d: got %s, want %d", i, p, w)
	}
}

func TestSequentialGetIndexRoundTrip(t *testing.T) {
	r := NewSequential(0)
	for i := uint64(0); i < 20; i++ {
		p, err := r.GetPrime(i)
		require.NoError(t, err)
		idx, err := r.GetIndex(p)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
}

func TestSequentialFactor(t *testing.T) {
	r := NewSequential(0)

	cases := []struct {
		n    int64
		want []Factor
	}{
		{1, nil},
		{2, []Factor{{big.NewInt(2), 1}}},
		{12, []Factor{{big.NewInt(2), 2}, {big.NewInt(3), 1}}},
		{97, []Factor{{big.NewInt(97), 1}}},
		{2 * 2 * 2 * 3 * 3 * 5, []Factor{{big.NewInt(2), 3}, {big.NewInt(3), 2}, {big.NewInt(5), 1}}},
	}

	for _, c := range cases {
		got, err := r.Factor(big.NewInt(c.n))
		require.NoError(t, err)
		require.Equal(t, len(c.want), len(got), "n=%d", c.n)
		for i := range c.want {
			require.Zerof(t, c.want[i].Prime.Cmp(got[i].Prime), "n=%d factor %d prime", c.n, i)
			require.Equal(t, c.want[i].Exponent, got[i].Exponent, "n=%d factor %d exponent", c.n, i)
		}
	}
}

func TestSequentialFactorReconstructs(t *testing.T) {
	r := NewSequential(0)
	n := big.NewInt(2 * 3 * 3 * 7 * 11)
	factors, err := r.Factor(n)
	require.NoError(t, err)

	product := big.NewInt(1)
	for _, f := range factors {
		product.Mul(product, new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil))
	}
	require.Zero(t, product.Cmp(n))
}
