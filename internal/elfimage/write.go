package elfimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	section32Size = 40
	section64Size = 64
)

// headers is the decoded ELF header and section header table, with 32-bit
// section headers widened to the 64-bit layout.
type headers struct {
	class    elf.Class
	order    binary.ByteOrder
	hdr32    elf.Header32
	hdr64    elf.Header64
	sections []elf.Section64
}

func (h *headers) shstrndx() int {
	if h.class == elf.ELFCLASS32 {
		return int(h.hdr32.Shstrndx)
	}
	return int(h.hdr64.Shstrndx)
}

func readHeaders(raw []byte, class elf.Class, order binary.ByteOrder) (*headers, error) {
	h := &headers{class: class, order: order}
	r := bytes.NewReader(raw)

	var shoff uint64
	var shnum, shentsize uint16
	switch class {
	case elf.ELFCLASS32:
		if err := binary.Read(r, order, &h.hdr32); err != nil {
			return nil, fmt.Errorf("failed to read ELF header: %w", err)
		}
		shoff, shnum, shentsize = uint64(h.hdr32.Shoff), h.hdr32.Shnum, h.hdr32.Shentsize
	case elf.ELFCLASS64:
		if err := binary.Read(r, order, &h.hdr64); err != nil {
			return nil, fmt.Errorf("failed to read ELF header: %w", err)
		}
		shoff, shnum, shentsize = h.hdr64.Shoff, h.hdr64.Shnum, h.hdr64.Shentsize
	default:
		return nil, fmt.Errorf("unsupported ELF class %v", class)
	}

	if shnum == 0 {
		return nil, fmt.Errorf("ELF has no section header table or uses extended numbering")
	}

	h.sections = make([]elf.Section64, shnum)
	for i := range h.sections {
		off := shoff + uint64(i)*uint64(shentsize)
		if off >= uint64(len(raw)) {
			return nil, fmt.Errorf("section header %d out of range", i)
		}
		sr := bytes.NewReader(raw[off:])
		if class == elf.ELFCLASS32 {
			var s elf.Section32
			if err := binary.Read(sr, order, &s); err != nil {
				return nil, fmt.Errorf("failed to read section header %d: %w", i, err)
			}
			h.sections[i] = elf.Section64{
				Name:      s.Name,
				Type:      s.Type,
				Flags:     uint64(s.Flags),
				Addr:      uint64(s.Addr),
				Off:       uint64(s.Off),
				Size:      uint64(s.Size),
				Link:      s.Link,
				Info:      s.Info,
				Addralign: uint64(s.Addralign),
				Entsize:   uint64(s.Entsize),
			}
		} else if err := binary.Read(sr, order, &h.sections[i]); err != nil {
			return nil, fmt.Errorf("failed to read section header %d: %w", i, err)
		}
	}
	return h, nil
}

func (h *headers) writeSection(buf *bytes.Buffer, s elf.Section64) error {
	if h.class == elf.ELFCLASS64 {
		return binary.Write(buf, h.order, s)
	}
	for _, v := range []uint64{s.Flags, s.Addr, s.Off, s.Size, s.Addralign, s.Entsize} {
		if v > math.MaxUint32 {
			return fmt.Errorf("value 0x%x does not fit a 32-bit section header", v)
		}
	}
	return binary.Write(buf, h.order, elf.Section32{
		Name:      s.Name,
		Type:      s.Type,
		Flags:     uint32(s.Flags),
		Addr:      uint32(s.Addr),
		Off:       uint32(s.Off),
		Size:      uint32(s.Size),
		Link:      s.Link,
		Info:      s.Info,
		Addralign: uint32(s.Addralign),
		Entsize:   uint32(s.Entsize),
	})
}

// encodeHeader returns the ELF header pointing at a new section header
// table.
func (h *headers) encodeHeader(shoff uint64, shnum int) ([]byte, error) {
	var buf bytes.Buffer
	if h.class == elf.ELFCLASS32 {
		if shoff > math.MaxUint32 {
			return nil, fmt.Errorf("ELF32 output exceeds 4 GiB")
		}
		hdr := h.hdr32
		hdr.Shoff = uint32(shoff)
		hdr.Shnum = uint16(shnum)
		hdr.Shentsize = section32Size
		if err := binary.Write(&buf, h.order, hdr); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	hdr := h.hdr64
	hdr.Shoff = shoff
	hdr.Shnum = uint16(shnum)
	hdr.Shentsize = section64Size
	if err := binary.Write(&buf, h.order, hdr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pad(buf *bytes.Buffer, align uint64) {
	if align <= 1 {
		return
	}
	if rem := uint64(buf.Len()) % align; rem != 0 {
		buf.Write(make([]byte, align-rem))
	}
}

// AppendSections returns a copy of the ELF file raw with copies added as
// new sections. Section data and an extended .shstrtab are appended after
// the existing contents, followed by a new section header table. The old
// table and string table stay in the file unreferenced. Program headers
// are not touched.
func AppendSections(raw []byte, copies []SectionCopy) ([]byte, error) {
	if len(copies) == 0 {
		return nil, fmt.Errorf("no sections to append")
	}

	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF: %w", err)
	}

	seen := make(map[string]bool, len(copies))
	for _, c := range copies {
		if c.Name == "" {
			return nil, fmt.Errorf("appended section has no name")
		}
		if f.Section(c.Name) != nil || seen[c.Name] {
			return nil, &SectionExistsError{Section: c.Name}
		}
		seen[c.Name] = true
	}

	h, err := readHeaders(raw, f.Class, f.ByteOrder)
	if err != nil {
		return nil, err
	}

	strndx := h.shstrndx()
	if strndx == int(elf.SHN_UNDEF) || strndx >= len(h.sections) {
		return nil, fmt.Errorf("invalid section name string table index %d", strndx)
	}
	total := len(h.sections) + len(copies)
	if total >= int(elf.SHN_LORESERVE) {
		return nil, fmt.Errorf("too many sections (%d)", total)
	}

	strtabHdr := h.sections[strndx]
	if strtabHdr.Off+strtabHdr.Size > uint64(len(raw)) {
		return nil, fmt.Errorf("section name string table out of range")
	}
	strtab := append([]byte(nil), raw[strtabHdr.Off:strtabHdr.Off+strtabHdr.Size]...)
	if len(strtab) == 0 || strtab[len(strtab)-1] != 0 {
		strtab = append(strtab, 0)
	}

	var buf bytes.Buffer
	buf.Grow(len(raw) + len(strtab) + total*section64Size)
	buf.Write(raw)

	index := make(map[string]uint32, len(f.Sections)+len(copies))
	for i, s := range f.Sections {
		if s.Name != "" {
			index[s.Name] = uint32(i)
		}
	}
	for i, c := range copies {
		index[c.Name] = uint32(len(h.sections) + i)
	}

	added := make([]elf.Section64, 0, len(copies))
	for _, c := range copies {
		var link uint32
		if c.Link != "" {
			var ok bool
			if link, ok = index[c.Link]; !ok {
				return nil, fmt.Errorf("section %q links to unknown section %q", c.Name, c.Link)
			}
		}

		pad(&buf, c.Align)
		off := uint64(buf.Len())
		buf.Write(c.Data)

		name := uint32(len(strtab))
		strtab = append(strtab, c.Name...)
		strtab = append(strtab, 0)

		added = append(added, elf.Section64{
			Name:      name,
			Type:      uint32(c.Type),
			Flags:     uint64(c.Flags),
			Addr:      c.Addr,
			Off:       off,
			Size:      uint64(len(c.Data)),
			Link:      link,
			Info:      c.Info,
			Addralign: c.Align,
			Entsize:   c.EntSize,
		})
	}

	h.sections[strndx].Off = uint64(buf.Len())
	h.sections[strndx].Size = uint64(len(strtab))
	buf.Write(strtab)

	if h.class == elf.ELFCLASS32 {
		pad(&buf, 4)
	} else {
		pad(&buf, 8)
	}
	shoff := uint64(buf.Len())
	for _, s := range append(h.sections, added...) {
		if err := h.writeSection(&buf, s); err != nil {
			return nil, err
		}
	}

	hdr, err := h.encodeHeader(shoff, total)
	if err != nil {
		return nil, err
	}
	out := buf.Bytes()
	copy(out, hdr)
	return out, nil
}
