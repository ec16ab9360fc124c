// Package checksum implements the XOR-fold checksum attached to every
// chunk as an extra prime factor: a single prime raised to a fixed
// power (CHECKSUM_POWER), derived from an XOR fold over the factor
// list's (registry index, exponent) pairs.
package checksum

import (
	"math/big"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/registry"
)

// CHECKSUM_POWER is the fixed exponent that marks the checksum prime
// factor within an encoded chunk's factorization. Exposed for
// interoperability per the wire-format constants in §6.
const CHECKSUM_POWER = 6

// CalculateXorSum folds registry.GetIndex(p) * exponent over factors
// with bitwise XOR, producing a non-negative fold value.
func CalculateXorSum(factors []registry.Factor, reg registry.Registry) (uint64, error) {
	var sum uint64
	for _, f := range factors {
		idx, err := reg.GetIndex(f.Prime)
		if err != nil {
			return 0, kernelerr.ErrRegistryError
		}
		sum ^= idx * uint64(f.Exponent)
	}
	return sum, nil
}

// CalculateChecksum returns the checksum prime for factors: the prime
// at the ordinal index produced by CalculateXorSum.
func CalculateChecksum(factors []registry.Factor, reg registry.Registry) (*big.Int, error) {
	sum, err := CalculateXorSum(factors, reg)
	if err != nil {
		return nil, err
	}
	return reg.GetPrime(sum)
}

// AttachChecksum returns raw * checksum(factors)^CHECKSUM_POWER. When
// the checksum prime is also one of factors' primes, the two exponents
// add up in the result and ExtractFactorsAndChecksum cannot separate
// them again.
func AttachChecksum(raw *big.Int, factors []registry.Factor, reg registry.Registry) (*big.Int, error) {
	cs, err := CalculateChecksum(factors, reg)
	if err != nil {
		return nil, err
	}
	power := new(big.Int).Exp(cs, big.NewInt(CHECKSUM_POWER), nil)
	return new(big.Int).Mul(raw, power), nil
}

// ExtractFactorsAndChecksum factors value via reg.Factor, then locates
// the single factor whose exponent equals CHECKSUM_POWER, returning the
// remaining factors as coreFactors and the checksum prime separately.
// Fails with a MalformedChunkError if zero or more than one factor
// carries exponent CHECKSUM_POWER.
func ExtractFactorsAndChecksum(value *big.Int, reg registry.Registry) (coreFactors []registry.Factor, checksumPrime *big.Int, err error) {
	factors, err := reg.Factor(value)
	if err != nil {
		return nil, nil, kernelerr.ErrRegistryError
	}

	checksumIdx := -1
	for i, f := range factors {
		if f.Exponent == CHECKSUM_POWER {
			if checksumIdx != -1 {
				return nil, nil, &kernelerr.MalformedChunkError{
					Chunk:  value,
					Reason: "more than one factor carries the checksum power",
				}
			}
			checksumIdx = i
		}
	}
	if checksumIdx == -1 {
		return nil, nil, &kernelerr.MalformedChunkError{
			Chunk:  value,
			Reason: "no factor carries the checksum power",
		}
	}

	checksumPrime = factors[checksumIdx].Prime
	coreFactors = make([]registry.Factor, 0, len(factors)-1)
	for i, f := range factors {
		if i != checksumIdx {
			coreFactors = append(coreFactors, f)
		}
	}
	return coreFactors, checksumPrime, nil
}

// CalculateBatchChecksum returns the checksum of the concatenation of
// every value's core factor list (i.e. with each value's own checksum
// factor stripped out first).
func CalculateBatchChecksum(values []*big.Int, reg registry.Registry) (*big.Int, error) {
	var all []registry.Factor
	for _, v := range values {
		core, _, err := ExtractFactorsAndChecksum(v, reg)
		if err != nil {
			return nil, err
		}
		all = append(all, core...)
	}
	return CalculateChecksum(all, reg)
}
