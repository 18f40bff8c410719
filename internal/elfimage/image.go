package elfimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/spf13/afero"
)

// SectionInfo describes one section header.
type SectionInfo struct {
	Index   int
	Name    string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Addr    uint64
	Offset  uint64
	Size    uint64
	Align   uint64
	EntSize uint64
	Link    uint32
	Info    uint32

	// LinkName is the name of the section Link refers to, if any
	LinkName string

	// LoadAddr is where the section's bytes are stored in flash, taken from
	// the PT_LOAD segment that contains it. It equals Addr for sections
	// outside any segment.
	LoadAddr uint64
}

// TypeName returns the SHT_* name of the section type.
func (s SectionInfo) TypeName() string {
	return SectionTypeName(s.Type)
}

// Image is a parsed ELF file held in memory.
type Image struct {
	// Path is the file the image was read from
	Path string
	// Raw is the unmodified file contents
	Raw []byte

	file *elf.File
}

// Open reads and parses the ELF file at path.
func Open(fs afero.Fs, path string) (*Image, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ELF file: %w", err)
	}
	img, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Path = path
	return img, nil
}

// Parse parses an in-memory ELF file.
func Parse(raw []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF: %w", err)
	}
	return &Image{Raw: raw, file: f}, nil
}

// Class returns the ELF class (32 or 64 bit).
func (img *Image) Class() elf.Class {
	return img.file.Class
}

// ByteOrder returns the byte order of the image.
func (img *Image) ByteOrder() binary.ByteOrder {
	return img.file.ByteOrder
}

// Machine returns the target architecture.
func (img *Image) Machine() elf.Machine {
	return img.file.Machine
}

// Sections returns the named sections in header order.
func (img *Image) Sections() []SectionInfo {
	var out []SectionInfo
	for i, s := range img.file.Sections {
		if s.Name == "" {
			continue
		}
		out = append(out, img.info(i, s))
	}
	return out
}

// Section looks up a section by name.
func (img *Image) Section(name string) (SectionInfo, error) {
	for i, s := range img.file.Sections {
		if s.Name == name {
			return img.info(i, s), nil
		}
	}
	return SectionInfo{}, &MissingSectionError{Section: name, Path: img.Path}
}

// SectionData returns the contents of the named section.
func (img *Image) SectionData(name string) ([]byte, error) {
	s := img.file.Section(name)
	if s == nil {
		return nil, &MissingSectionError{Section: name, Path: img.Path}
	}
	data, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to read section %q: %w", name, err)
	}
	return data, nil
}

func (img *Image) info(i int, s *elf.Section) SectionInfo {
	info := SectionInfo{
		Index:   i,
		Name:    s.Name,
		Type:    s.Type,
		Flags:   s.Flags,
		Addr:    s.Addr,
		Offset:  s.Offset,
		Size:    s.Size,
		Align:   s.Addralign,
		EntSize: s.Entsize,
		Link:    s.Link,
		Info:    s.Info,
	}
	if s.Link != 0 && int(s.Link) < len(img.file.Sections) {
		info.LinkName = img.file.Sections[s.Link].Name
	}
	progs := make([]elf.ProgHeader, 0, len(img.file.Progs))
	for _, p := range img.file.Progs {
		progs = append(progs, p.ProgHeader)
	}
	info.LoadAddr = loadAddr(progs, info)
	return info
}

// loadAddr maps a section to its physical address through the PT_LOAD
// segment whose file image contains it.
func loadAddr(progs []elf.ProgHeader, s SectionInfo) uint64 {
	if s.Type == elf.SHT_NOBITS || s.Flags&elf.SHF_ALLOC == 0 {
		return s.Addr
	}
	for _, p := range progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		if s.Offset >= p.Off && s.Offset+s.Size <= p.Off+p.Filesz {
			return p.Paddr + (s.Offset - p.Off)
		}
	}
	return s.Addr
}
