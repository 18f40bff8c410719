package elfimage

import (
	"fmt"
	"io"
	"math"

	"github.com/marcinbor85/gohex"
)

// HexLineLength is the number of data bytes per Intel HEX record.
const HexLineLength = 16

// WriteIntelHex writes the copies at their load addresses as Intel HEX.
// Empty copies are skipped; overlapping copies are an error.
func WriteIntelHex(w io.Writer, copies []SectionCopy) error {
	mem := gohex.NewMemory()
	for _, c := range copies {
		if len(c.Data) == 0 {
			continue
		}
		if c.LoadAddr+uint64(len(c.Data)) > math.MaxUint32+1 {
			return fmt.Errorf("section %q at 0x%x is outside the 32-bit address space", c.Name, c.LoadAddr)
		}
		if err := mem.AddBinary(uint32(c.LoadAddr), c.Data); err != nil {
			return fmt.Errorf("failed to add section %q: %w", c.Name, err)
		}
	}
	return mem.DumpIntelHex(w, HexLineLength)
}
