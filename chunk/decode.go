package chunk

import (
	"math/big"

	"github.com/humuhumu33/primekernel/checksum"
	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/registry"
)

// ValidateChunkStructure checks the generic structural invariants a
// core factorization (checksum factor already stripped) must satisfy
// regardless of schema: non-empty, and every exponent strictly
// positive. Schema-specific presence is checked by DecodeChunk's
// determination logic, since which schema applies is exactly what
// validation here cannot yet know.
func ValidateChunkStructure(core []registry.Factor) error {
	if len(core) == 0 {
		return &kernelerr.MalformedChunkError{Reason: "empty factorization"}
	}
	for _, f := range core {
		if f.Exponent == 0 {
			return &kernelerr.MalformedChunkError{Reason: "zero exponent present"}
		}
	}
	return nil
}

// DecodeChunk factors chunk, separates its checksum factor from its
// core factors, validates the core's generic structure, then
// determines which schema the core matches. Determination order
// mirrors §4.E: an OPERATION exponent at a non-structural prime wins
// first, a BlockHeader sentinel on prime 7 or 11 wins second, and a
// DATA-shaped core wins last. A core matching none of these is
// reported as malformed.
func DecodeChunk(chunk *big.Int, reg registry.Registry) (*DecodedChunk, error) {
	core, checksumPrime, err := checksum.ExtractFactorsAndChecksum(chunk, reg)
	if err != nil {
		return nil, err
	}
	if err := ValidateChunkStructure(core); err != nil {
		return nil, err
	}

	for _, f := range core {
		if f.Exponent == Operation && !isStructuralPrime(f.Prime) {
			return decodeOperation(core, checksumPrime, f.Prime)
		}
	}

	for _, f := range core {
		if f.Exponent == BlockHeader && (f.Prime.Cmp(blockTagPrime) == 0 || f.Prime.Cmp(nttTagPrime) == 0) {
			return decodeBlockHeader(core, checksumPrime, f.Prime)
		}
	}

	if fields, ok := tryDecodeData(core); ok {
		return &DecodedChunk{Type: DataType, Checksum: checksumPrime, Fields: fields}, nil
	}

	return nil, &kernelerr.MalformedChunkError{Chunk: chunk, Reason: "no schema matched"}
}

func decodeOperation(core []registry.Factor, checksumPrime, opcode *big.Int) (*DecodedChunk, error) {
	var operand *uint64
	for _, f := range core {
		if f.Prime.Cmp(operandPrime) == 0 && f.Exponent >= Operand {
			v := uint64(f.Exponent - Operand)
			operand = &v
		}
	}
	return &DecodedChunk{
		Type:     OperationType,
		Checksum: checksumPrime,
		Fields:   OperationFields{Opcode: new(big.Int).Set(opcode), Operand: operand},
	}, nil
}

func decodeBlockHeader(core []registry.Factor, checksumPrime, tag *big.Int) (*DecodedChunk, error) {
	lenPrime := blockLenPrime
	if tag.Cmp(nttTagPrime) == 0 {
		lenPrime = nttLenPrime
	}

	var length *uint64
	for _, f := range core {
		if f.Prime.Cmp(lenPrime) == 0 {
			v := uint64(f.Exponent)
			length = &v
		}
	}
	if length == nil {
		return nil, &kernelerr.MalformedChunkError{Reason: "block header missing length factor"}
	}

	return &DecodedChunk{
		Type:     BlockHeaderType,
		Checksum: checksumPrime,
		Fields:   BlockHeaderFields{Tag: new(big.Int).Set(tag), Length: *length},
	}, nil
}

func tryDecodeData(core []registry.Factor) (DataFields, bool) {
	var e2, e3, e5, e7 *uint32
	for i := range core {
		f := core[i]
		switch {
		case f.Prime.Cmp(dataPosPrime) == 0:
			e2 = &core[i].Exponent
		case f.Prime.Cmp(dataValPrime) == 0:
			e3 = &core[i].Exponent
		case f.Prime.Cmp(dataPosHighPrime) == 0:
			e5 = &core[i].Exponent
		case f.Prime.Cmp(dataValHighPrime) == 0:
			e7 = &core[i].Exponent
		}
	}
	if e2 == nil || e3 == nil || e5 == nil || e7 == nil {
		return DataFields{}, false
	}
	if *e2 < DataPosition || *e2 > DataPosition+7 {
		return DataFields{}, false
	}
	if *e3 < DataValue || *e3 > DataValue+127 {
		return DataFields{}, false
	}
	if *e5 < 1 || *e7 < 1 {
		return DataFields{}, false
	}

	posLow := uint64(*e2 - DataPosition)
	valLow := uint64(*e3 - DataValue)
	posHigh := uint64(*e5 - 1)
	valHigh := uint64(*e7 - 1)

	return DataFields{
		Position: posHigh*8 + posLow,
		Value:    valHigh*128 + valLow,
	}, true
}
