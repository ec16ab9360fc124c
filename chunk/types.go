package chunk

import (
	"math/big"

	"github.com/humuhumu33/primekernel/registry"
)

func newPrime(v int64) *big.Int { return big.NewInt(v) }

func isStructuralPrime(p *big.Int) bool {
	for _, s := range structuralPrimes {
		if p.Cmp(big.NewInt(s)) == 0 {
			return true
		}
	}
	return false
}

// Type identifies which schema a decoded chunk matched.
type Type int

const (
	// DataType is a positioned-value chunk produced by EncodeData or
	// EncodeText.
	DataType Type = iota
	// OperationType is an opcode(+operand) chunk produced by
	// EncodeOperation.
	OperationType
	// BlockHeaderType is a length-prefix chunk produced by EncodeBlock
	// or EncodeNttBlock.
	BlockHeaderType
)

// Fields is the sum type of a decoded chunk's schema-specific payload:
// exactly one of DataFields, OperationFields or BlockHeaderFields.
type Fields interface {
	isFields()
}

// DataFields is the payload of a DataType chunk.
type DataFields struct {
	Position uint64
	Value    uint64
}

func (DataFields) isFields() {}

// OperationFields is the payload of an OperationType chunk. Operand is
// nil when the chunk carries no operand factor.
type OperationFields struct {
	Opcode  *big.Int
	Operand *uint64
}

func (OperationFields) isFields() {}

// BlockHeaderFields is the payload of a BlockHeaderType chunk. Tag is
// either the block tag prime (7) or the NTT tag prime (11).
type BlockHeaderFields struct {
	Tag    *big.Int
	Length uint64
}

func (BlockHeaderFields) isFields() {}

// DecodedChunk is the result of DecodeChunk: a chunk's schema tag, its
// checksum prime, and its schema-specific fields.
type DecodedChunk struct {
	Type     Type
	Checksum *big.Int
	Fields   Fields
}

func reconstruct(factors []registry.Factor) *big.Int {
	result := big.NewInt(1)
	for _, f := range factors {
		result.Mul(result, new(big.Int).Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil))
	}
	return result
}
