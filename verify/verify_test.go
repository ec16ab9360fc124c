package verify

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/humuhumu33/primekernel/checksum"
	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/registry"
)

func TestVerifyValueValid(t *testing.T) {
	reg := registry.NewSequential(0)
	factors := []registry.Factor{
		{Prime: big.NewInt(2), Exponent: 3},
		{Prime: big.NewInt(3), Exponent: 2},
	}
	raw := big.NewInt(1)
	for _, f := range factors {
		raw.Mul(raw, new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil))
	}
	value, err := checksum.AttachChecksum(raw, factors, reg)
	require.NoError(t, err)

	result, err := VerifyValue(value, reg)
	require.NoError(t, err)
	require.True(t, result.Valid)
}

func TestVerifyValueTamperedExponentInvalid(t *testing.T) {
	reg := registry.NewSequential(0)
	factors := []registry.Factor{
		{Prime: big.NewInt(2), Exponent: 3},
		{Prime: big.NewInt(3), Exponent: 2},
	}
	raw := big.NewInt(1)
	for _, f := range factors {
		raw.Mul(raw, new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil))
	}
	value, err := checksum.AttachChecksum(raw, factors, reg)
	require.NoError(t, err)

	tampered := new(big.Int).Mul(value, big.NewInt(2))
	result, err := VerifyValue(tampered, reg)
	require.Error(t, err)
	require.False(t, result.Valid)

	var mismatch *kernelerr.ChecksumMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.True(t, errors.As(result.Err, &mismatch))
	require.Zero(t, mismatch.Actual.Cmp(result.ChecksumPrime))
	require.NotZero(t, mismatch.Expected.Cmp(mismatch.Actual))
	require.False(t, kernelerr.IsTransient(err))
}

func TestVerifyValueWithRetrySucceedsImmediately(t *testing.T) {
	reg := registry.NewSequential(0)
	factors := []registry.Factor{{Prime: big.NewInt(2), Exponent: 5}}
	raw := new(big.Int).Exp(big.NewInt(2), big.NewInt(5), nil)
	value, err := checksum.AttachChecksum(raw, factors, reg)
	require.NoError(t, err)

	result, err := VerifyValueWithRetry(context.Background(), value, reg, DefaultRetryConfig())
	require.NoError(t, err)
	require.True(t, result.Valid)
}
