// Package ntt implements the Number-Theoretic Transform engine (§4.F):
// a Context over (modulus, primitive root, max size), iterative
// Cooley-Tukey forward/inverse transforms with bit-reversal
// permutation, convolution, and floating-point windowing functions.
package ntt

import (
	"math/big"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/modular"
	"github.com/humuhumu33/primekernel/registry"
)

// Context holds the precomputed tables for a fixed (modulus, root, N)
// triple. Contexts are immutable once constructed and safely shareable
// across goroutines.
type Context struct {
	Modulus       *big.Int
	PrimitiveRoot *big.Int
	MaxSize       int

	omega *big.Int
	w     []*big.Int // W[k] = omega^k mod q, k in [0, MaxSize)
	wInv  []*big.Int // Winv[k] = modInverse(W[k], q)
	nInv  *big.Int   // modInverse(MaxSize, q)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NewContext constructs a Context for modulus q, primitive root g and
// maximum transform size n. Fails with ErrInvalidContext if q <= 1, g
// is not in (0, q), n is not a power of two, or gcd(g, q) != 1. g must
// additionally be verified a primitive (q-1)-th root modulo q: every
// distinct prime factor l of q-1 must satisfy g^((q-1)/l) != 1 mod q,
// checked via reg's factorization of q-1.
func NewContext(q, g *big.Int, n int, reg registry.Registry) (*Context, error) {
	if q.Cmp(big.NewInt(1)) <= 0 {
		return nil, kernelerr.ErrInvalidContext
	}
	if g.Sign() <= 0 || g.Cmp(q) >= 0 {
		return nil, kernelerr.ErrInvalidContext
	}
	if !isPowerOfTwo(n) {
		return nil, kernelerr.ErrInvalidContext
	}
	if modular.GCD(g, q).Cmp(big.NewInt(1)) != 0 {
		return nil, kernelerr.ErrInvalidContext
	}

	qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
	if err := verifyPrimitiveRoot(g, q, qMinus1, reg); err != nil {
		return nil, err
	}

	nBig := big.NewInt(int64(n))
	if new(big.Int).Mod(qMinus1, nBig).Sign() != 0 {
		return nil, kernelerr.ErrInvalidContext
	}

	exp := new(big.Int).Div(qMinus1, nBig)
	omega := modular.ModPow(g, exp, q)

	w := make([]*big.Int, n)
	wInv := make([]*big.Int, n)
	w[0] = big.NewInt(1)
	for k := 1; k < n; k++ {
		w[k] = new(big.Int).Mod(new(big.Int).Mul(w[k-1], omega), q)
	}
	for k := 0; k < n; k++ {
		inv, err := modular.ModInverse(w[k], q)
		if err != nil {
			return nil, kernelerr.ErrInvalidContext
		}
		wInv[k] = inv
	}

	nInv, err := modular.ModInverse(nBig, q)
	if err != nil {
		return nil, kernelerr.ErrInvalidContext
	}

	return &Context{
		Modulus:       new(big.Int).Set(q),
		PrimitiveRoot: new(big.Int).Set(g),
		MaxSize:       n,
		omega:         omega,
		w:             w,
		wInv:          wInv,
		nInv:          nInv,
	}, nil
}

// verifyPrimitiveRoot checks g^((q-1)/l) != 1 mod q for every distinct
// prime factor l of qMinus1, using reg to factor it.
func verifyPrimitiveRoot(g, q, qMinus1 *big.Int, reg registry.Registry) error {
	factors, err := reg.Factor(qMinus1)
	if err != nil {
		return kernelerr.ErrRegistryError
	}
	one := big.NewInt(1)
	for _, f := range factors {
		exp := new(big.Int).Div(qMinus1, f.Prime)
		if modular.ModPow(g, exp, q).Cmp(one) == 0 {
			return kernelerr.ErrInvalidContext
		}
	}
	return nil
}
