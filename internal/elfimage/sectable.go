package elfimage

import (
	"debug/elf"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// WriteSectionTable prints sections as a table with hex addresses and
// comma-grouped sizes, followed by the total size of allocated sections.
func WriteSectionTable(w io.Writer, sections []SectionInfo) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Nr", "Section Name", "Type", "Flags", "Addr", "Load", "Offset", "Size (B)"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	var alloc uint64
	for _, s := range sections {
		table.Append([]string{
			strconv.Itoa(s.Index),
			s.Name,
			s.TypeName(),
			FlagString(s.Flags),
			fmt.Sprintf("%08x", s.Addr),
			fmt.Sprintf("%08x", s.LoadAddr),
			fmt.Sprintf("%08x", s.Offset),
			humanize.Comma(int64(s.Size)),
		})
		if s.Flags&elf.SHF_ALLOC != 0 && s.Type != elf.SHT_NOBITS {
			alloc += s.Size
		}
	}
	table.Render()

	_, err := fmt.Fprintf(w, "%d sections, %s in allocated sections\n", len(sections), humanize.IBytes(alloc))
	return err
}
