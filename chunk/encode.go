package chunk

import (
	"math/big"

	"github.com/humuhumu33/primekernel/checksum"
	"github.com/humuhumu33/primekernel/internal/kernelerr"
	"github.com/humuhumu33/primekernel/registry"
)

// EncodeData encodes a (position, value) pair as a checksummed chunk:
// exponent DataPosition+position%8 on prime 2, DataValue+value%128 on
// prime 3, position/8+1 on prime 5, value/128+1 on prime 7. position
// and value must be non-negative.
func EncodeData(position, value int64, reg registry.Registry) (*big.Int, error) {
	if position < 0 || value < 0 {
		return nil, kernelerr.ErrInvalidField
	}

	posLow := uint32(position % 8)
	valLow := uint32(value % 128)
	posHigh := uint32(position/8 + 1)
	valHigh := uint32(value/128 + 1)

	factors := []registry.Factor{
		{Prime: dataPosPrime, Exponent: DataPosition + posLow},
		{Prime: dataValPrime, Exponent: DataValue + valLow},
		{Prime: dataPosHighPrime, Exponent: posHigh},
		{Prime: dataValHighPrime, Exponent: valHigh},
	}
	raw := reconstruct(factors)
	return checksum.AttachChecksum(raw, factors, reg)
}

// EncodeOperation encodes opcode (a prime) raised to Operation, plus
// an optional operand carried as Operand+operand on prime 5.
func EncodeOperation(opcode Opcode, operand *int64, reg registry.Registry) (*big.Int, error) {
	if opcode <= 0 {
		return nil, kernelerr.ErrInvalidField
	}
	if operand != nil && *operand < 0 {
		return nil, kernelerr.ErrInvalidField
	}

	factors := []registry.Factor{
		{Prime: big.NewInt(int64(opcode)), Exponent: Operation},
	}
	if operand != nil {
		factors = append(factors, registry.Factor{
			Prime:    operandPrime,
			Exponent: Operand + uint32(*operand),
		})
	}
	raw := reconstruct(factors)
	return checksum.AttachChecksum(raw, factors, reg)
}

// blockHeaderValue builds and checksums the two-factor header
// [(tag, BlockHeader), (lenPrime, length)] shared by EncodeBlock and
// EncodeNttBlock.
func blockHeaderValue(tag, lenPrime *big.Int, length int, reg registry.Registry) (*big.Int, error) {
	if length < 0 {
		return nil, kernelerr.ErrInvalidField
	}
	factors := []registry.Factor{
		{Prime: tag, Exponent: BlockHeader},
		{Prime: lenPrime, Exponent: uint32(length)},
	}
	raw := reconstruct(factors)
	return checksum.AttachChecksum(raw, factors, reg)
}

// EncodeBlock prepends a block header encoding len(chunks) to chunks,
// tagged with the plain block tag prime (7).
func EncodeBlock(chunks []*big.Int, reg registry.Registry) ([]*big.Int, error) {
	header, err := blockHeaderValue(blockTagPrime, blockLenPrime, len(chunks), reg)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, len(chunks)+1)
	out = append(out, header)
	out = append(out, chunks...)
	return out, nil
}

// EncodeNttBlock prepends a block header encoding len(chunks) to
// chunks, tagged with the NTT block tag prime (11).
func EncodeNttBlock(chunks []*big.Int, reg registry.Registry) ([]*big.Int, error) {
	header, err := blockHeaderValue(nttTagPrime, nttLenPrime, len(chunks), reg)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, 0, len(chunks)+1)
	out = append(out, header)
	out = append(out, chunks...)
	return out, nil
}

// EncodeText encodes text's runes as a sequence of data chunks, one
// per rune, keyed by rune index.
func EncodeText(text string, reg registry.Registry) ([]*big.Int, error) {
	runes := []rune(text)
	chunks := make([]*big.Int, len(runes))
	for i, r := range runes {
		c, err := EncodeData(int64(i), int64(r), reg)
		if err != nil {
			return nil, err
		}
		chunks[i] = c
	}
	return chunks, nil
}
