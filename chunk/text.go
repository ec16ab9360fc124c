package chunk

import (
	"math/big"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/humuhumu33/primekernel/registry"
)

// DecodeText decodes chunks, keeps only data-schema chunks, and emits
// their values as runes ordered by position. A later chunk's value
// overrides an earlier chunk's at the same position, since positions
// are folded into a map in encounter order before sorting.
func DecodeText(chunks []*big.Int, reg registry.Registry) (string, error) {
	byPosition := make(map[uint64]uint64, len(chunks))
	for _, c := range chunks {
		decoded, err := DecodeChunk(c, reg)
		if err != nil {
			return "", err
		}
		if decoded.Type != DataType {
			continue
		}
		fields := decoded.Fields.(DataFields)
		byPosition[fields.Position] = fields.Value
	}

	positions := make([]uint64, 0, len(byPosition))
	for p := range byPosition {
		positions = append(positions, p)
	}
	slices.Sort(positions)

	var sb strings.Builder
	for _, p := range positions {
		sb.WriteRune(rune(byPosition[p]))
	}
	return sb.String(), nil
}
