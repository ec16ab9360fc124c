package modular

import (
	"github.com/klauspost/cpuid/v2"
)

// Default tunables (§6 configuration). These mirror the teacher's
// habit of exposing every knob on a plain value-type Config rather
// than a package-level global.
const (
	DefaultNativeThreshold  = 50
	DefaultMaxSupportedBits = 4096
	DefaultSlidingWindow    = 4
)

// Config controls the behavior of every function in this package.
type Config struct {
	// PythonCompatible selects ((a mod m) + m) mod m semantics for Mod
	// (always non-negative) instead of a sign-preserving remainder.
	PythonCompatible bool

	// Strict enables the bit-size guard: operations fail with
	// BitSizeExceededError when an operand's bit length exceeds
	// MaxSupportedBits.
	Strict bool

	// UseOptimized selects sliding-window exponentiation over plain
	// square-and-multiply in ModPow.
	UseOptimized bool

	// NativeThreshold is the combined bit length of two operands below
	// which ModMul multiplies directly instead of using the
	// Russian-peasant fallback.
	NativeThreshold int

	// MaxSupportedBits is the strict-mode bit size ceiling.
	MaxSupportedBits int

	// UseCache enables memoization of modInverse/gcd/extendedGcd/modPow
	// results through Cache. Only consulted when Cache is non-nil.
	UseCache bool

	// Cache is the memoization table consulted by the *WithConfig entry
	// points when UseCache is set. Sharing one Cache across calls is
	// what makes memoization pay off; DefaultConfig leaves it nil.
	Cache *Cache
}

// DefaultConfig returns the module's default arithmetic configuration.
// UseOptimized defaults to true only when the running CPU exposes the
// carry-chain extensions (ADX/BMI2) that make the extra bookkeeping of
// sliding-window exponentiation worth its cost; slower cores fall back
// to plain square-and-multiply, the same kind of capability probe the
// teacher's RNS kernels make before picking a reduction strategy.
func DefaultConfig() Config {
	cfg := Config{
		PythonCompatible: true,
		Strict:           false,
		NativeThreshold:  DefaultNativeThreshold,
		MaxSupportedBits: DefaultMaxSupportedBits,
		UseCache:         false,
	}
	if cpuid.CPU.Supports(cpuid.ADX, cpuid.BMI2) {
		cfg.UseOptimized = true
	}
	return cfg
}
