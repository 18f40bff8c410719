package table

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultIndent prefixes every rendered payload line.
const DefaultIndent = "    "

// RenderOptions controls payload rendering.
type RenderOptions struct {
	// Ascending prints word 0 first; otherwise the highest word comes first.
	Ascending bool
	// LabelWidth pads the bit-range labels. Zero sizes the labels to the
	// widest bit index in the payload.
	LabelWidth int
	// Indent is written before each line.
	Indent string
}

// RenderPayload renders one line per payload word:
//
//	    [95 :64 ] = 0x00000065 = 00000000 00000000 00000000 01100101
func RenderPayload(payload []uint32, ascending bool) []string {
	return Render(payload, RenderOptions{Ascending: ascending, Indent: DefaultIndent})
}

// Render renders payload words with explicit options.
func Render(payload []uint32, opts RenderOptions) []string {
	if len(payload) == 0 {
		return nil
	}

	width := opts.LabelWidth
	if width <= 0 {
		width = LabelWidth(len(payload))
	}

	lines := make([]string, 0, len(payload))
	for n := range payload {
		i := n
		if !opts.Ascending {
			i = len(payload) - n - 1
		}
		lines = append(lines, opts.Indent+FormatWord(i, payload[i], width))
	}
	return lines
}

// LabelWidth returns the number of digits in the highest bit index of a
// payload of n words.
func LabelWidth(n int) int {
	if n <= 0 {
		return 1
	}
	return len(strconv.Itoa(32*n - 1))
}

// FormatWord formats payload word i without indentation.
func FormatWord(i int, word uint32, labelWidth int) string {
	hi := 32*i + 31
	lo := 32 * i
	return fmt.Sprintf("[%-*d:%-*d] = 0x%08x = %s", labelWidth, hi, labelWidth, lo, word, BinaryGroups(word))
}

// BinaryGroups returns the word as four space-separated 8-bit groups, most
// significant byte first.
func BinaryGroups(word uint32) string {
	groups := make([]string, 4)
	for j := 0; j < 4; j++ {
		groups[j] = fmt.Sprintf("%08b", byte(word>>(24-8*j)))
	}
	return strings.Join(groups, " ")
}
