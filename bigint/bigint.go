// Package bigint provides arbitrary-precision bit and byte-level
// utilities on top of math/big: bit length, signed little-endian byte
// round trips, bit get/set, leading/trailing zero counts, a
// Miller-Rabin probable-prime test, and cryptographically seeded
// random generation. The registry's prime search is built on
// IsProbablePrime, which itself uses the modular package's ModPow.
package bigint

import (
	"crypto/rand"

	"math/big"

	"golang.org/x/crypto/chacha20"

	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/modular"
)

// BitLength returns the number of bits in |n|. BitLength(0) is defined
// as 1, matching the fixed-point convention used throughout the codec
// (an empty factorization still needs a non-zero bit width to size
// buffers against).
func BitLength(n *big.Int) int {
	if n.Sign() == 0 {
		return 1
	}
	return n.BitLen()
}

// ToByteArray returns the little-endian magnitude bytes of n. Negative
// n gets a trailing 0xFF sign byte appended. Because a positive value
// whose most significant magnitude byte already has its high bit set
// would otherwise be indistinguishable from a negative one on decode,
// such values are padded with an extra high 0x00 byte first -- the
// same disambiguation rule used by ASN.1 DER and java.math.BigInteger.
func ToByteArray(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}

	mag := new(big.Int).Abs(n).Bytes() // big-endian magnitude, no leading zero byte
	le := reverse(mag)

	if n.Sign() < 0 {
		return append(le, 0xFF)
	}
	if len(le) > 0 && le[len(le)-1]&0x80 != 0 {
		le = append(le, 0x00)
	}
	return le
}

// FromByteArray is the exact inverse of ToByteArray.
func FromByteArray(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}

	if b[len(b)-1] == 0xFF {
		mag := reverse(b[:len(b)-1])
		v := new(big.Int).SetBytes(mag)
		return v.Neg(v)
	}

	mag := reverse(b)
	return new(big.Int).SetBytes(mag)
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// GetBit returns the value (0 or 1) of bit k of n. k must be
// non-negative.
func GetBit(n *big.Int, k int) (uint, error) {
	if k < 0 {
		return 0, kernelerr.ErrInvalidPosition
	}
	return n.Bit(k), nil
}

// SetBit returns a new Int equal to n with bit k set to bit (0 or 1).
// k must be non-negative.
func SetBit(n *big.Int, k int, bit uint) (*big.Int, error) {
	if k < 0 {
		return nil, kernelerr.ErrInvalidPosition
	}
	return new(big.Int).SetBit(n, k, bit), nil
}

// CountTrailingZeros returns the number of trailing zero bits of |n|.
// Fails with ErrInvalidSign for negative n; returns 64 for n == 0 so
// the result can be used as a word-sized primitive.
func CountTrailingZeros(n *big.Int) (uint64, error) {
	if n.Sign() < 0 {
		return 0, kernelerr.ErrInvalidSign
	}
	if n.Sign() == 0 {
		return 64, nil
	}
	return uint64(n.TrailingZeroBits()), nil
}

// CountLeadingZeros returns the number of leading zero bits of |n|
// within a 64-bit word (i.e. 64 - bit length). Fails with
// ErrInvalidSign for negative n; returns 64 for n == 0. Values whose
// magnitude exceeds 64 significant bits saturate at 0, matching the
// word-sized-primitive contract documented in the spec.
func CountLeadingZeros(n *big.Int) (uint64, error) {
	if n.Sign() < 0 {
		return 0, kernelerr.ErrInvalidSign
	}
	if n.Sign() == 0 {
		return 64, nil
	}
	bl := n.BitLen()
	if bl >= 64 {
		return 0, nil
	}
	return uint64(64 - bl), nil
}

// deterministicWitnesses are the smallest prime witnesses sufficient
// for a fully deterministic Miller-Rabin test on any n < 2^64.
var deterministicWitnesses = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

// maxUint64 is 2^64 as a big.Int, the deterministic-witness cutover.
var maxUint64 = new(big.Int).Lsh(big.NewInt(1), 64)

// IsProbablePrime reports whether n is probably prime using a
// Miller-Rabin test. For n < 2^64 the fixed witness set above makes the
// result deterministic; otherwise rounds random witnesses in [2, n-2]
// are used.
func IsProbablePrime(n *big.Int, rounds int) bool {
	if rounds <= 0 {
		rounds = 5
	}

	if n.Sign() <= 0 || n.Cmp(big.NewInt(1)) <= 0 {
		return false
	}
	two := big.NewInt(2)
	three := big.NewInt(3)
	if n.Cmp(two) == 0 || n.Cmp(three) == 0 {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}

	// n - 1 = d * 2^s with d odd.
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	d := new(big.Int).Set(nMinus1)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	witness := func(a *big.Int) bool {
		x := modular.ModPow(a, d, n)
		if x.Cmp(big.NewInt(1)) == 0 || x.Cmp(nMinus1) == 0 {
			return true
		}
		for i := 0; i < s-1; i++ {
			x = modular.ModPow(x, two, n)
			if x.Cmp(nMinus1) == 0 {
				return true
			}
		}
		return false
	}

	if n.Cmp(maxUint64) < 0 {
		for _, w := range deterministicWitnesses {
			a := big.NewInt(w)
			if a.Cmp(n) >= 0 {
				continue
			}
			if !witness(a) {
				return false
			}
		}
		return true
	}

	upper := new(big.Int).Sub(n, big.NewInt(3)) // range size for [2, n-2]
	for i := 0; i < rounds; i++ {
		r, err := rand.Int(rand.Reader, upper)
		if err != nil {
			continue
		}
		a := r.Add(r, two)
		if !witness(a) {
			return false
		}
	}
	return true
}

// GetRandomBigInt returns a uniformly random value in [0, 2^bits)
// drawn from a cryptographic entropy source. bits must be positive.
//
// Each call reads a fresh ChaCha20 key and nonce from crypto/rand and
// draws every output byte from that keystream, so all output is still
// rooted in OS entropy.
func GetRandomBigInt(bits int) (*big.Int, error) {
	if bits <= 0 {
		return nil, kernelerr.ErrInvalidSize
	}

	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, err
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}

	nBytes := (bits + 7) / 8
	zeros := make([]byte, nBytes)
	stream := make([]byte, nBytes)
	cipher.XORKeyStream(stream, zeros)

	// Mask off the excess high bits so the result stays within
	// [0, 2^bits).
	extra := nBytes*8 - bits
	if extra > 0 {
		stream[0] &= byte(0xFF >> extra)
	}

	return new(big.Int).SetBytes(stream), nil
}
