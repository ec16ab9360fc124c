package ntt

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
)

// WindowFunction names a windowing function applicable to a
// floating-point sample vector via ApplyWindow.
type WindowFunction int

const (
	Rectangular WindowFunction = iota
	Hamming
	Blackman
	Kaiser
)

// ApplyWindow returns a new vector with fn applied to v; v is never
// mutated. Kaiser uses beta = 8.6, a common compromise between main-lobe
// width and side-lobe attenuation.
func ApplyWindow(v []float64, fn WindowFunction) ([]float64, error) {
	n := len(v)
	out := make([]float64, n)
	switch fn {
	case Rectangular:
		copy(out, v)
	case Hamming:
		for i := 0; i < n; i++ {
			out[i] = v[i] * (0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	case Blackman:
		for i := 0; i < n; i++ {
			x := 2 * math.Pi * float64(i) / float64(n-1)
			out[i] = v[i] * (0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x))
		}
	case Kaiser:
		const beta = 8.6
		i0Beta := besselI0(beta)
		for i := 0; i < n; i++ {
			ratio := 2*float64(i)/float64(n-1) - 1
			arg := beta * math.Sqrt(1-ratio*ratio)
			out[i] = v[i] * besselI0(arg) / i0Beta
		}
	default:
		return nil, kernelerr.ErrInvalidField
	}
	return out, nil
}

// scaleForWindow converts v's entries to float64 samples relative to
// the modulus, so ApplyWindow's taper is meaningful regardless of how
// large the field elements are.
func scaleForWindow(v []*big.Int, q *big.Int) []float64 {
	qf := new(big.Float).SetInt(q)
	out := make([]float64, len(v))
	for i, x := range v {
		ratio := new(big.Float).Quo(new(big.Float).SetInt(x), qf)
		f, _ := ratio.Float64()
		out[i] = f
	}
	return out
}

// unscaleFromWindow maps windowed float64 samples back into Z/qZ,
// rounding to the nearest integer residue.
func unscaleFromWindow(v []float64, q *big.Int) []*big.Int {
	qf := new(big.Float).SetInt(q)
	out := make([]*big.Int, len(v))
	for i, f := range v {
		scaled := new(big.Float).Mul(big.NewFloat(f), qf)
		if scaled.Sign() < 0 {
			scaled.Sub(scaled, big.NewFloat(0.5))
		} else {
			scaled.Add(scaled, big.NewFloat(0.5))
		}
		i64, _ := scaled.Int(nil)
		out[i] = new(big.Int).Mod(i64, q)
	}
	return out
}

// applyWindowToModulus applies fn to v as a windowing pre-processing
// step (§4.F.6): v's entries are scaled into [0,1) samples relative to
// c.Modulus, windowed, and mapped back to residues mod c.Modulus. This
// is what lets ApplyWindow serve as an optional step ahead of Forward
// or Convolve instead of only operating on a standalone float64 vector.
func applyWindowToModulus(v []*big.Int, q *big.Int, fn WindowFunction) ([]*big.Int, error) {
	samples := scaleForWindow(v, q)
	windowed, err := ApplyWindow(samples, fn)
	if err != nil {
		return nil, err
	}
	return unscaleFromWindow(windowed, q), nil
}

// besselI0 evaluates the zeroth-order modified Bessel function of the
// first kind as its defining power series sum_k (x/2)^(2k) / (k!)^2,
// using bigfloat.Pow for each term's arbitrary-precision exponentiation
// so the series converges cleanly well past the precision float64
// arithmetic alone would hold -- the Kaiser window's defining term has
// no stdlib equivalent.
func besselI0(x float64) float64 {
	const prec = 128
	half := new(big.Float).SetPrec(prec).Quo(big.NewFloat(x), big.NewFloat(2))

	sum := big.NewFloat(1)
	term := big.NewFloat(1)
	for k := 1; k <= 32; k++ {
		power := bigfloat.Pow(half, big.NewFloat(float64(2*k)))
		kFactorial := factorial(k)
		term = new(big.Float).SetPrec(prec).Quo(power, new(big.Float).Mul(kFactorial, kFactorial))
		sum.Add(sum, term)
	}
	f, _ := sum.Float64()
	return f
}

func factorial(k int) *big.Float {
	r := big.NewFloat(1)
	for i := 2; i <= k; i++ {
		r.Mul(r, big.NewFloat(float64(i)))
	}
	return r
}
