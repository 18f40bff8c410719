package elfimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"
)

// minimalELF returns an executable with only the null section and
// .shstrtab, the smallest file debug/elf and AppendSections accept.
func minimalELF(t *testing.T, class elf.Class, order binary.ByteOrder) []byte {
	t.Helper()

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(class)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	strtab := []byte("\x00.shstrtab\x00")
	var buf bytes.Buffer

	write := func(v any) {
		if err := binary.Write(&buf, order, v); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}

	switch class {
	case elf.ELFCLASS32:
		strOff := uint32(52)
		shoff := uint32(64)
		write(elf.Header32{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(elf.EM_ARM),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     0x0C000000,
			Shoff:     shoff,
			Ehsize:    52,
			Phentsize: 32,
			Shentsize: 40,
			Shnum:     2,
			Shstrndx:  1,
		})
		buf.Write(strtab)
		buf.Write(make([]byte, int(shoff)-buf.Len()))
		write(elf.Section32{})
		write(elf.Section32{Name: 1, Type: uint32(elf.SHT_STRTAB), Off: strOff, Size: uint32(len(strtab)), Addralign: 1})
	case elf.ELFCLASS64:
		strOff := uint64(64)
		shoff := uint64(80)
		write(elf.Header64{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(elf.EM_AARCH64),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     0x0C000000,
			Shoff:     shoff,
			Ehsize:    64,
			Phentsize: 56,
			Shentsize: 64,
			Shnum:     2,
			Shstrndx:  1,
		})
		buf.Write(strtab)
		buf.Write(make([]byte, int(shoff)-buf.Len()))
		write(elf.Section64{})
		write(elf.Section64{Name: 1, Type: uint32(elf.SHT_STRTAB), Off: strOff, Size: uint64(len(strtab)), Addralign: 1})
	default:
		t.Fatalf("unsupported class %v", class)
	}
	return buf.Bytes()
}

func fill(seed byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

// secureSections is a cut-down secure image layout in bank 1.
func secureSections() []SectionCopy {
	return []SectionCopy{
		{Name: ".isr_vector", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Addr: 0x0C000000, Align: 4, Data: fill(0x10, 0x40)},
		{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Addr: 0x0C000040, Align: 8, Data: fill(0x20, 0x1200)},
		{Name: ".ARM.exidx", Type: SHTArmExidx, Flags: elf.SHF_ALLOC | elf.SHF_LINK_ORDER, Addr: 0x0C001240, Align: 4, Link: ".text", Data: fill(0x30, 8)},
		{Name: ".init_array", Type: elf.SHT_INIT_ARRAY, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x0C001248, Align: 4, EntSize: 4, Data: fill(0x40, 4)},
		{Name: ".note.gnu.build-id", Type: elf.SHT_NOTE, Flags: elf.SHF_ALLOC, Addr: 0x0C00124C, Align: 4, Data: fill(0x50, 16)},
	}
}

// secureImage returns an ARM ELF32 holding secureSections.
func secureImage(t *testing.T) []byte {
	t.Helper()
	raw, err := AppendSections(minimalELF(t, elf.ELFCLASS32, binary.LittleEndian), secureSections())
	if err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	return raw
}
