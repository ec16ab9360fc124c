// Package primekernel implements a prime-factorization-based data
// representation kernel. Arbitrary content is encoded as positive
// integers whose prime factorization carries both payload (data,
// opcode, operand fields) and a self-verifying checksum attached as an
// extra prime factor. A Number-Theoretic Transform layer provides a
// spectral round-trip over the same modular arithmetic, and a chunked
// stream processor pumps long sequences of encoded chunks through a
// bounded, backpressure-aware pipeline.
//
// The module is organized the way a small math-heavy library usually
// is: flat, per-concern packages with no framework scaffolding.
//
//   - bigint    arbitrary-precision bit/byte utilities and primality
//   - modular   mod/modPow/modInverse/gcd/lcm and friends
//   - registry  the prime <-> index collaborator (interface + reference impl)
//   - checksum  XOR-fold checksum attachment and extraction
//   - verify    checksum verification and retry semantics
//   - chunk     the wire codec built on checksum and registry
//   - ntt       the Number-Theoretic Transform built on modular
//   - stream    the chunked, backpressure-aware stream processor
package primekernel
