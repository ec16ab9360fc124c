// Package verify implements checksum verification (§4.D) over values
// produced by the checksum and chunk codec layers, plus a retry
// wrapper for transient registry failures.
package verify

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/humuhumu33/primekernel/checksum"
	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/registry"
)

// Result is the outcome of verifying a single value.
type Result struct {
	Valid         bool
	CoreFactors   []registry.Factor
	ChecksumPrime *big.Int
	// Err carries the *kernelerr.ChecksumMismatchError when Valid is
	// false, so a caller gets the same Expected/Actual fields whether
	// they inspect Result or the returned error.
	Err error
}

// VerifyValue extracts value's core factors and checksum prime,
// recomputes the expected checksum from the core factors, and compares
// it against the checksum prime actually found. MalformedChunkError and
// registry errors are returned as-is (never treated as transient). A
// mismatch is reported both through Result.Valid/Result.Err and as the
// returned error, as a *kernelerr.ChecksumMismatchError; it is never
// transient (kernelerr.IsTransient rejects it).
func VerifyValue(value *big.Int, reg registry.Registry) (Result, error) {
	core, checksumPrime, err := checksum.ExtractFactorsAndChecksum(value, reg)
	if err != nil {
		return Result{}, err
	}

	expected, err := checksum.CalculateChecksum(core, reg)
	if err != nil {
		return Result{}, err
	}

	if expected.Cmp(checksumPrime) != 0 {
		mismatch := &kernelerr.ChecksumMismatchError{Expected: expected, Actual: checksumPrime}
		return Result{
			Valid:         false,
			CoreFactors:   core,
			ChecksumPrime: checksumPrime,
			Err:           mismatch,
		}, mismatch
	}

	return Result{
		Valid:         true,
		CoreFactors:   core,
		ChecksumPrime: checksumPrime,
	}, nil
}

// RetryConfig controls VerifyValueWithRetry's exponential backoff.
type RetryConfig struct {
	Attempts   int
	InitialGap time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns three attempts starting at 10ms and
// doubling each retry.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, InitialGap: 10 * time.Millisecond, Multiplier: 2}
}

// VerifyValueWithRetry re-runs VerifyValue under exponential backoff
// when the underlying error is transient (kernelerr.ErrTransient or
// kernelerr.ErrRegistryError, wrapping a flaky external registry).
// ChecksumMismatchError and MalformedChunkError are never retried: they
// surface on the first attempt.
func VerifyValueWithRetry(ctx context.Context, value *big.Int, reg registry.Registry, cfg RetryConfig) (Result, error) {
	if cfg.Attempts <= 0 {
		cfg = DefaultRetryConfig()
	}

	gap := cfg.InitialGap
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		result, err := VerifyValue(value, reg)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var malformed *kernelerr.MalformedChunkError
		var mismatch *kernelerr.ChecksumMismatchError
		if errors.As(err, &mismatch) {
			return result, err
		}
		if errors.As(err, &malformed) || !(errors.Is(err, kernelerr.ErrRegistryError) || errors.Is(err, kernelerr.ErrTransient)) {
			return Result{}, err
		}

		if attempt == cfg.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Result{}, kernelerr.ErrCancelled
		case <-time.After(gap):
		}
		gap = time.Duration(float64(gap) * cfg.Multiplier)
	}
	return Result{}, lastErr
}
