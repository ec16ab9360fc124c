package registry

import (
	"math/big"
	"sync"

	"github.com/humuhumu33/primekernel/bigint"
	"github.com/humuhumu33/primekernel/internal/kernelerr"
)

// Sequential is an in-memory Registry that grows its prime list on
// demand by incrementing candidates and testing them with
// bigint.IsProbablePrime -- the same trial-search idiom the teacher
// uses to locate a primitive root, applied here to ordinal prime
// indexing instead. This is intentionally the simplest generator that
// satisfies the Non-goal "no automatic prime generation beyond a
// Miller-Rabin primality test": no sieve, no strong-prime search.
type Sequential struct {
	mu      sync.Mutex
	primes  []*big.Int // primes[i] is the i-th prime, 0-indexed
	indexOf map[string]uint64
	rounds  int
}

// NewSequential returns a Sequential registry seeded with 2. rounds is
// the Miller-Rabin round count used for candidates at or above 2^64
// (see bigint.IsProbablePrime); 0 selects the default of 5.
func NewSequential(rounds int) *Sequential {
	two := big.NewInt(2)
	return &Sequential{
		primes:  []*big.Int{two},
		indexOf: map[string]uint64{two.String(): 0},
		rounds:  rounds,
	}
}

// extendTo grows the prime list until it has at least n entries. Must
// be called with s.mu held.
func (s *Sequential) extendTo(n uint64) {
	for uint64(len(s.primes)) < n {
		candidate := new(big.Int).Add(s.primes[len(s.primes)-1], big.NewInt(1))
		for !bigint.IsProbablePrime(candidate, s.rounds) {
			candidate = new(big.Int).Add(candidate, big.NewInt(1))
		}
		s.indexOf[candidate.String()] = uint64(len(s.primes))
		s.primes = append(s.primes, candidate)
	}
}

// GetPrime returns the index-th prime (0 -> 2, 1 -> 3, 2 -> 5, ...).
func (s *Sequential) GetPrime(index uint64) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extendTo(index + 1)
	return new(big.Int).Set(s.primes[index]), nil
}

// GetIndex returns the ordinal index of prime, extending the registry
// with larger primes until either prime is found or the registry has
// certainly passed it.
func (s *Sequential) GetIndex(prime *big.Int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := prime.String()
	if idx, ok := s.indexOf[key]; ok {
		return idx, nil
	}
	for {
		last := s.primes[len(s.primes)-1]
		if last.Cmp(prime) >= 0 {
			return 0, kernelerr.ErrRegistryError
		}
		s.extendTo(uint64(len(s.primes) + 1))
		if idx, ok := s.indexOf[key]; ok {
			return idx, nil
		}
	}
}

// Factor returns the canonical prime factorization of n via trial
// division against the registry's growing prime list. This is
// sufficient for the chunk and checksum integers this module produces,
// whose factor bases are small by construction.
func (s *Sequential) Factor(n *big.Int) ([]Factor, error) {
	if n.Sign() <= 0 {
		return nil, kernelerr.ErrRegistryError
	}

	remaining := new(big.Int).Set(n)
	var factors []Factor

	s.mu.Lock()
	defer s.mu.Unlock()

	one := big.NewInt(1)
	i := 0
	for remaining.Cmp(one) != 0 {
		s.extendTo(uint64(i + 1))
		p := s.primes[i]

		if new(big.Int).Mul(p, p).Cmp(remaining) > 0 {
			// No factor <= sqrt(remaining) divides it: remaining is
			// itself prime. Register it so the registry stays total
			// over every prime it is asked about.
			s.indexOfLocked(remaining)
			factors = append(factors, Factor{Prime: new(big.Int).Set(remaining), Exponent: 1})
			break
		}

		exp := uint32(0)
		q, r := new(big.Int), new(big.Int)
		for {
			q.QuoRem(remaining, p, r)
			if r.Sign() != 0 {
				break
			}
			remaining.Set(q)
			exp++
		}
		if exp > 0 {
			factors = append(factors, Factor{Prime: new(big.Int).Set(p), Exponent: exp})
		}
		i++
	}

	return factors, nil
}

// indexOfLocked registers prime (assumed prime) by growing the
// sequential list until it is reached, callable while s.mu is already
// held. Since extendTo always advances to the immediate next prime,
// this loop terminates exactly at prime -- no prime can be skipped.
func (s *Sequential) indexOfLocked(prime *big.Int) uint64 {
	key := prime.String()
	for {
		if idx, ok := s.indexOf[key]; ok {
			return idx
		}
		s.extendTo(uint64(len(s.primes) + 1))
	}
}
