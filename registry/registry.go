// Package registry defines the prime <-> index collaborator consumed
// by the checksum and chunk codec layers, along with Sequential, a
// reference in-memory implementation.
package registry

import "math/big"

// Registry maps between primes and their ordinal index (0 -> 2, 1 -> 3,
// 2 -> 5, ...) and factors arbitrary integers into their canonical
// prime factorization. Implementations must be total over their
// observed index/prime set and must return factor lists with primes in
// ascending order and exponents >= 1.
type Registry interface {
	// GetPrime returns the index-th prime (0-indexed, 0 -> 2).
	GetPrime(index uint64) (*big.Int, error)

	// GetIndex returns the ordinal index of prime, the inverse of
	// GetPrime.
	GetIndex(prime *big.Int) (uint64, error)

	// Factor returns the unique prime factorization of n as
	// (prime, exponent) pairs, primes ascending, exponents >= 1.
	Factor(n *big.Int) ([]Factor, error)
}

// Factor is a (prime, exponent) pair within a factorization.
type Factor struct {
	Prime    *big.Int
	Exponent uint32
}
