package ntt

import (
	"math/big"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/modular"
)

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// bitReverse returns the value of the low logN bits of i with their
// bit order reversed.
func bitReverse(i, logN int) int {
	r := 0
	for b := 0; b < logN; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

func log2(n int) int {
	l := 0
	for 1<<l < n {
		l++
	}
	return l
}

func bitReversePermute(a []*big.Int) {
	n := len(a)
	logN := log2(n)
	for i := 0; i < n; i++ {
		j := bitReverse(i, logN)
		if j > i {
			a[i], a[j] = a[j], a[i]
		}
	}
}

func padded(v []*big.Int, n int, q *big.Int) []*big.Int {
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		if i < len(v) {
			out[i] = new(big.Int).Mod(v[i], q)
		} else {
			out[i] = big.NewInt(0)
		}
	}
	return out
}

// Forward pads v with zeros to the next power of two n (n <= c.MaxSize),
// and returns its length-len(v) NTT, computed via iterative
// Cooley-Tukey over the context's precomputed roots of unity.
func (c *Context) Forward(v []*big.Int) ([]*big.Int, error) {
	return c.transform(v, c.w)
}

// ForwardWindowed applies fn to v as a pre-processing step (§4.F.6)
// before running Forward, so callers that need spectral leakage
// reduction don't have to window the vector themselves and re-derive
// the modulus scaling.
func (c *Context) ForwardWindowed(v []*big.Int, fn WindowFunction) ([]*big.Int, error) {
	windowed, err := applyWindowToModulus(v, c.Modulus, fn)
	if err != nil {
		return nil, err
	}
	return c.Forward(windowed)
}

// Inverse applies the same structure as Forward using the inverse
// roots, then scales every entry by the modular inverse of the padded
// length.
func (c *Context) Inverse(v []*big.Int) ([]*big.Int, error) {
	a, err := c.transform(v, c.wInv)
	if err != nil {
		return nil, err
	}

	n := nextPowerOfTwo(len(v))
	nInv := c.nInv
	if n != c.MaxSize {
		var invErr error
		nInv, invErr = modular.ModInverse(big.NewInt(int64(n)), c.Modulus)
		if invErr != nil {
			return nil, invErr
		}
	}
	for i := range a {
		a[i] = new(big.Int).Mod(new(big.Int).Mul(a[i], nInv), c.Modulus)
	}
	return a, nil
}

func (c *Context) transform(v []*big.Int, roots []*big.Int) ([]*big.Int, error) {
	n := nextPowerOfTwo(len(v))
	if n == 0 {
		n = 1
	}
	if n > c.MaxSize {
		return nil, kernelerr.ErrInvalidSize
	}

	a := padded(v, n, c.Modulus)
	bitReversePermute(a)

	for s := 2; s <= n; s <<= 1 {
		halfSize := s / 2
		step := c.MaxSize / s
		for i := 0; i < n; i += s {
			for j := 0; j < halfSize; j++ {
				u := a[i+j]
				t := new(big.Int).Mod(new(big.Int).Mul(a[i+j+halfSize], roots[j*step]), c.Modulus)
				a[i+j] = new(big.Int).Mod(new(big.Int).Add(u, t), c.Modulus)
				a[i+j+halfSize] = new(big.Int).Mod(new(big.Int).Sub(u, t), c.Modulus)
			}
		}
	}

	return a[:len(v)], nil
}

// Verify reports whether inverse(forward(v)) reproduces v elementwise.
func (c *Context) Verify(v []*big.Int) (bool, error) {
	f, err := c.Forward(v)
	if err != nil {
		return false, err
	}
	inv, err := c.Inverse(f)
	if err != nil {
		return false, err
	}
	if len(inv) != len(v) {
		return false, nil
	}
	for i := range v {
		if inv[i].Cmp(new(big.Int).Mod(v[i], c.Modulus)) != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Convolve returns the cyclic convolution of a and b computed via
// forward transform, pointwise multiplication in the spectral domain,
// and inverse transform, truncated to len(a)+len(b)-1.
func (c *Context) Convolve(a, b []*big.Int) ([]*big.Int, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, kernelerr.ErrInvalidSize
	}
	outLen := len(a) + len(b) - 1
	n := nextPowerOfTwo(outLen)
	if n > c.MaxSize {
		return nil, kernelerr.ErrInvalidSize
	}

	fa, err := c.transform(padTo(a, n), c.w)
	if err != nil {
		return nil, err
	}
	fb, err := c.transform(padTo(b, n), c.w)
	if err != nil {
		return nil, err
	}

	spectrum := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		prod, err := modular.ModMul(fa[i], fb[i], c.Modulus)
		if err != nil {
			return nil, err
		}
		spectrum[i] = prod
	}

	result, err := c.Inverse(spectrum)
	if err != nil {
		return nil, err
	}
	return result[:outLen], nil
}

// ConvolveWindowed windows a and b with fn (§4.F.6) before convolving,
// the same optional pre-processing step ForwardWindowed applies to a
// single vector.
func (c *Context) ConvolveWindowed(a, b []*big.Int, fn WindowFunction) ([]*big.Int, error) {
	wa, err := applyWindowToModulus(a, c.Modulus, fn)
	if err != nil {
		return nil, err
	}
	wb, err := applyWindowToModulus(b, c.Modulus, fn)
	if err != nil {
		return nil, err
	}
	return c.Convolve(wa, wb)
}

func padTo(v []*big.Int, n int) []*big.Int {
	out := make([]*big.Int, n)
	copy(out, v)
	for i := len(v); i < n; i++ {
		out[i] = big.NewInt(0)
	}
	return out
}
