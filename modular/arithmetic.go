// Package modular implements arbitrary-precision modular arithmetic:
// mod/modMul/modPow/modInverse/gcd/lcm/extendedGcd with Python-compatible
// sign semantics, sliding-window exponentiation, and Stein's binary GCD.
// Every exported entry point except BinaryGCD and LCM also has a
// *WithConfig variant accepting an explicit Config; the bare name
// always uses DefaultConfig.
package modular

import (
	"math/big"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
)

func bitLength(n *big.Int) int {
	if n.Sign() == 0 {
		return 1
	}
	return n.BitLen()
}

// nonNegativeMod is the internal canonical-residue reduction used by
// every multi-step algorithm below regardless of the caller's
// PythonCompatible preference: intermediate values in a Russian-peasant
// or sliding-window loop must stay inside [0, |m|) for the recurrence
// to be correct, independent of what sign convention the top-level
// result is eventually reported in.
func nonNegativeMod(a, m *big.Int) *big.Int {
	mm := new(big.Int).Abs(m)
	return new(big.Int).Mod(a, mm)
}

func checkStrict(cfg Config, op string, ns ...*big.Int) error {
	if !cfg.Strict {
		return nil
	}
	limit := cfg.MaxSupportedBits
	if limit <= 0 {
		limit = DefaultMaxSupportedBits
	}
	actual := 0
	for _, n := range ns {
		if bl := bitLength(n); bl > actual {
			actual = bl
		}
	}
	if actual > limit {
		return &kernelerr.BitSizeExceededError{Op: op, Limit: limit, Actual: actual}
	}
	return nil
}

// Mod returns a mod m using DefaultConfig.
func Mod(a, m *big.Int) (*big.Int, error) { return ModWithConfig(a, m, DefaultConfig()) }

// ModWithConfig returns a mod m. In Python-compatible mode (the
// default) the result is the canonical residue in [0, |m|); otherwise
// it is the sign-preserving remainder. Fails with ErrDivisionByZero if
// m is zero, and with a BitSizeExceededError in strict mode when either
// operand exceeds cfg.MaxSupportedBits bits.
func ModWithConfig(a, m *big.Int, cfg Config) (*big.Int, error) {
	if m.Sign() == 0 {
		return nil, kernelerr.ErrDivisionByZero
	}
	if err := checkStrict(cfg, "mod", a, m); err != nil {
		return nil, err
	}
	mm := new(big.Int).Abs(m)
	if cfg.PythonCompatible {
		return new(big.Int).Mod(a, mm), nil
	}
	return new(big.Int).Rem(a, mm), nil
}

// ModMul returns a*b mod m using DefaultConfig.
func ModMul(a, b, m *big.Int) (*big.Int, error) { return ModMulWithConfig(a, b, m, DefaultConfig()) }

// ModMulWithConfig returns a*b mod m. When the combined bit length of a
// and b is within cfg.NativeThreshold, the product is computed directly;
// otherwise a Russian-peasant (double-and-add) loop is used so that no
// intermediate ever exceeds the bit width of m. The result is always
// the canonical non-negative residue, matching the spec's "canonical
// residue" contract for modMul regardless of PythonCompatible.
func ModMulWithConfig(a, b, m *big.Int, cfg Config) (*big.Int, error) {
	if m.Sign() == 0 {
		return nil, kernelerr.ErrDivisionByZero
	}
	if err := checkStrict(cfg, "modMul", a, b, m); err != nil {
		return nil, err
	}

	threshold := cfg.NativeThreshold
	if threshold <= 0 {
		threshold = DefaultNativeThreshold
	}

	if bitLength(a)+bitLength(b) <= threshold {
		return nonNegativeMod(new(big.Int).Mul(a, b), m), nil
	}

	mm := new(big.Int).Abs(m)
	x := nonNegativeMod(a, m)
	y := nonNegativeMod(b, m)
	acc := new(big.Int)
	two := big.NewInt(2)

	for y.Sign() > 0 {
		if y.Bit(0) == 1 {
			acc.Add(acc, x)
			acc.Mod(acc, mm)
		}
		x.Mul(x, two)
		x.Mod(x, mm)
		y.Rsh(y, 1)
	}
	return acc, nil
}

// ModPow returns base^exp mod m using DefaultConfig.
func ModPow(base, exp, m *big.Int) *big.Int {
	r, err := ModPowWithConfig(base, exp, m, DefaultConfig())
	if err != nil {
		// Reachable with m == 0, or with a negative exp whose base has
		// no inverse mod m. The primality and NTT callers in this
		// module always pass a non-zero modulus and a non-negative
		// exponent.
		return big.NewInt(0)
	}
	return r
}

// ModPowWithConfig returns base^exp mod m via square-and-multiply, or
// sliding-window exponentiation when cfg.UseOptimized is set. m == 1
// yields 0; exp == 0 yields 1; base == 0 yields 0 (for positive exp).
// Negative exp computes the modular inverse of base first. When
// cfg.UseCache and cfg.Cache are set, the result is memoized under
// ("modpow", base, exp, m).
func ModPowWithConfig(base, exp, m *big.Int, cfg Config) (*big.Int, error) {
	if cfg.UseCache && cfg.Cache != nil {
		if v, ok := cfg.Cache.Get("modpow", base, exp, m); ok {
			return v, nil
		}
	}

	r, err := modPowUncached(base, exp, m, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.UseCache && cfg.Cache != nil {
		cfg.Cache.Put(r, "modpow", base, exp, m)
	}
	return r, nil
}

func modPowUncached(base, exp, m *big.Int, cfg Config) (*big.Int, error) {
	if m.Sign() == 0 {
		return nil, kernelerr.ErrDivisionByZero
	}
	if new(big.Int).Abs(m).Cmp(big.NewInt(1)) == 0 {
		return big.NewInt(0), nil
	}
	if exp.Sign() == 0 {
		return nonNegativeMod(big.NewInt(1), m), nil
	}
	if base.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if exp.Sign() < 0 {
		inv, err := ModInverseWithConfig(base, m, cfg)
		if err != nil {
			return nil, err
		}
		return modPowUncached(inv, new(big.Int).Neg(exp), m, cfg)
	}

	if cfg.UseOptimized {
		return SlidingWindowModPowWithConfig(base, exp, m, DefaultSlidingWindow, cfg)
	}

	result := big.NewInt(1)
	b, err := ModWithConfig(base, m, cfg)
	if err != nil {
		return nil, err
	}
	e := new(big.Int).Set(exp)
	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			if result, err = ModMulWithConfig(result, b, m, cfg); err != nil {
				return nil, err
			}
		}
		if b, err = ModMulWithConfig(b, b, m, cfg); err != nil {
			return nil, err
		}
		e.Rsh(e, 1)
	}
	return result, nil
}

// SlidingWindowModPow returns base^exp mod m via sliding-window
// exponentiation with window width w (DefaultSlidingWindow when
// w <= 0), using DefaultConfig.
func SlidingWindowModPow(base, exp, m *big.Int, w int) (*big.Int, error) {
	return SlidingWindowModPowWithConfig(base, exp, m, w, DefaultConfig())
}

// SlidingWindowModPowWithConfig precomputes the odd powers
// base^1, base^3, ..., base^(2^w - 1) mod m, then scans exp MSB to LSB:
// squaring once per zero bit, and at each one bit taking a window of at
// most w bits that starts and ends with a one bit (it may contain zero
// bits), squaring once per window bit and multiplying in the matching
// precomputed odd power.
func SlidingWindowModPowWithConfig(base, exp, m *big.Int, w int, cfg Config) (*big.Int, error) {
	if w <= 0 {
		w = DefaultSlidingWindow
	}
	if m.Sign() == 0 {
		return nil, kernelerr.ErrDivisionByZero
	}
	if exp.Sign() == 0 {
		return nonNegativeMod(big.NewInt(1), m), nil
	}
	if exp.Sign() < 0 {
		inv, err := ModInverseWithConfig(base, m, cfg)
		if err != nil {
			return nil, err
		}
		return SlidingWindowModPowWithConfig(inv, new(big.Int).Neg(exp), m, w, cfg)
	}

	b, err := ModWithConfig(base, m, cfg)
	if err != nil {
		return nil, err
	}
	if b.Sign() == 0 {
		return big.NewInt(0), nil
	}

	numOdd := 1 << uint(w-1)
	oddPowers := make([]*big.Int, numOdd)
	oddPowers[0] = new(big.Int).Set(b)
	bSquared, err := ModMulWithConfig(b, b, m, cfg)
	if err != nil {
		return nil, err
	}
	for k := 1; k < numOdd; k++ {
		if oddPowers[k], err = ModMulWithConfig(oddPowers[k-1], bSquared, m, cfg); err != nil {
			return nil, err
		}
	}

	result := big.NewInt(1)
	i := exp.BitLen() - 1
	for i >= 0 {
		if exp.Bit(i) == 0 {
			if result, err = ModMulWithConfig(result, result, m, cfg); err != nil {
				return nil, err
			}
			i--
			continue
		}

		l := i - w + 1
		if l < 0 {
			l = 0
		}
		for exp.Bit(l) == 0 {
			l++
		}

		for j := 0; j < i-l+1; j++ {
			if result, err = ModMulWithConfig(result, result, m, cfg); err != nil {
				return nil, err
			}
		}

		windowVal := 0
		for k := i; k >= l; k-- {
			windowVal <<= 1
			windowVal |= int(exp.Bit(k))
		}
		if result, err = ModMulWithConfig(result, oddPowers[(windowVal-1)/2], m, cfg); err != nil {
			return nil, err
		}
		i = l - 1
	}
	return result, nil
}

// ExtendedGCD returns (g, x, y) such that a*x + b*y == g == gcd(a, b)
// using DefaultConfig, computed iteratively to avoid unbounded
// recursion on large inputs.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	return ExtendedGCDWithConfig(a, b, DefaultConfig())
}

// ExtendedGCDWithConfig is ExtendedGCD consulting cfg.Cache when
// cfg.UseCache is set. g, x and y are memoized as separate entries
// under ("extgcd-g"|"extgcd-x"|"extgcd-y", a, b) since Cache stores one
// *big.Int per key.
func ExtendedGCDWithConfig(a, b *big.Int, cfg Config) (g, x, y *big.Int) {
	useCache := cfg.UseCache && cfg.Cache != nil
	if useCache {
		gv, gok := cfg.Cache.Get("extgcd-g", a, b)
		xv, xok := cfg.Cache.Get("extgcd-x", a, b)
		yv, yok := cfg.Cache.Get("extgcd-y", a, b)
		if gok && xok && yok {
			return gv, xv, yv
		}
	}

	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	for r.Sign() != 0 {
		q := new(big.Int).Quo(oldR, r)

		newR := new(big.Int).Sub(oldR, new(big.Int).Mul(q, r))
		newS := new(big.Int).Sub(oldS, new(big.Int).Mul(q, s))
		newT := new(big.Int).Sub(oldT, new(big.Int).Mul(q, t))

		oldR, r = r, newR
		oldS, s = s, newS
		oldT, t = t, newT
	}

	if useCache {
		cfg.Cache.Put(oldR, "extgcd-g", a, b)
		cfg.Cache.Put(oldS, "extgcd-x", a, b)
		cfg.Cache.Put(oldT, "extgcd-y", a, b)
	}
	return oldR, oldS, oldT
}

// ModInverse returns a^-1 mod m, normalized to [0, m), using
// DefaultConfig. Fails with ErrDivisionByZero if a or m is zero, or a
// NoInverseError if gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	return ModInverseWithConfig(a, m, DefaultConfig())
}

// ModInverseWithConfig is ModInverse consulting cfg.Cache under
// ("modinv", a, m) when cfg.UseCache is set.
func ModInverseWithConfig(a, m *big.Int, cfg Config) (*big.Int, error) {
	if a.Sign() == 0 || m.Sign() == 0 {
		return nil, kernelerr.ErrDivisionByZero
	}
	if cfg.UseCache && cfg.Cache != nil {
		if v, ok := cfg.Cache.Get("modinv", a, m); ok {
			return v, nil
		}
	}

	g, x, _ := ExtendedGCDWithConfig(a, m, cfg)
	gAbs := new(big.Int).Abs(g)
	if gAbs.Cmp(big.NewInt(1)) != 0 {
		return nil, &kernelerr.NoInverseError{A: a, M: m, Gcd: gAbs}
	}
	result := nonNegativeMod(x, m)

	if cfg.UseCache && cfg.Cache != nil {
		cfg.Cache.Put(result, "modinv", a, m)
	}
	return result, nil
}

// GCD returns the greatest common divisor of |a| and |b| using
// DefaultConfig.
func GCD(a, b *big.Int) *big.Int {
	return GCDWithConfig(a, b, DefaultConfig())
}

// GCDWithConfig is GCD consulting cfg.Cache under ("gcd", a, b) when
// cfg.UseCache is set.
func GCDWithConfig(a, b *big.Int, cfg Config) *big.Int {
	if cfg.UseCache && cfg.Cache != nil {
		if v, ok := cfg.Cache.Get("gcd", a, b); ok {
			return v
		}
	}
	result := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	if cfg.UseCache && cfg.Cache != nil {
		cfg.Cache.Put(result, "gcd", a, b)
	}
	return result
}

// BinaryGCD returns the greatest common divisor of |a| and |b| using
// Stein's algorithm: factor out common powers of two, then repeatedly
// halve the even operand and subtract-and-swap on odd pairs.
func BinaryGCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	if x.Sign() == 0 {
		return y
	}
	if y.Sign() == 0 {
		return x
	}

	shift := uint(0)
	for x.Bit(0) == 0 && y.Bit(0) == 0 {
		x.Rsh(x, 1)
		y.Rsh(y, 1)
		shift++
	}
	for x.Bit(0) == 0 {
		x.Rsh(x, 1)
	}

	for y.Sign() != 0 {
		for y.Bit(0) == 0 {
			y.Rsh(y, 1)
		}
		if x.Cmp(y) > 0 {
			x, y = y, x
		}
		y.Sub(y, x)
	}
	return x.Lsh(x, shift)
}

// LCM returns the least common multiple of a and b, or zero if either
// is zero. The GCD is divided out of a before multiplying by b to keep
// the intermediate product as small as possible.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	g := GCD(a, b)
	aAbs := new(big.Int).Abs(a)
	bAbs := new(big.Int).Abs(b)
	q := new(big.Int).Quo(aAbs, g)
	return q.Mul(q, bAbs)
}
