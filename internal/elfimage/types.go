package elfimage

import (
	"debug/elf"
	"fmt"
	"strings"
)

// ARM processor-specific section types missing from debug/elf.
const (
	SHTArmExidx          elf.SectionType = 0x70000001
	SHTArmPreemptMap     elf.SectionType = 0x70000002
	SHTArmAttributes     elf.SectionType = 0x70000003
	SHTArmDebugOverlay   elf.SectionType = 0x70000004
	SHTArmOverlaySection elf.SectionType = 0x70000005
)

var armTypeNames = map[elf.SectionType]string{
	SHTArmExidx:          "SHT_ARM_EXIDX",
	SHTArmPreemptMap:     "SHT_ARM_PREEMPTMAP",
	SHTArmAttributes:     "SHT_ARM_ATTRIBUTES",
	SHTArmDebugOverlay:   "SHT_ARM_DEBUGOVERLAY",
	SHTArmOverlaySection: "SHT_ARM_OVERLAYSECTION",
}

var knownTypes = []elf.SectionType{
	elf.SHT_NULL,
	elf.SHT_PROGBITS,
	elf.SHT_SYMTAB,
	elf.SHT_STRTAB,
	elf.SHT_RELA,
	elf.SHT_HASH,
	elf.SHT_DYNAMIC,
	elf.SHT_NOTE,
	elf.SHT_NOBITS,
	elf.SHT_REL,
	elf.SHT_SHLIB,
	elf.SHT_DYNSYM,
	elf.SHT_INIT_ARRAY,
	elf.SHT_FINI_ARRAY,
	elf.SHT_PREINIT_ARRAY,
	elf.SHT_GROUP,
	elf.SHT_SYMTAB_SHNDX,
	SHTArmExidx,
	SHTArmPreemptMap,
	SHTArmAttributes,
	SHTArmDebugOverlay,
	SHTArmOverlaySection,
}

// SectionTypeName returns the SHT_* name of t, including the ARM types.
func SectionTypeName(t elf.SectionType) string {
	if name, ok := armTypeNames[t]; ok {
		return name
	}
	return t.String()
}

// ParseSectionType parses a section type name such as "SHT_PROGBITS",
// "progbits" or "SHT_ARM_EXIDX".
func ParseSectionType(name string) (elf.SectionType, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(want, "SHT_") {
		want = "SHT_" + want
	}
	for _, t := range knownTypes {
		if SectionTypeName(t) == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown section type %q", name)
}

// FlagString renders section flags the way readelf does (e.g., "AX", "WA").
func FlagString(f elf.SectionFlag) string {
	var sb strings.Builder
	for _, fl := range []struct {
		flag elf.SectionFlag
		c    byte
	}{
		{elf.SHF_WRITE, 'W'},
		{elf.SHF_ALLOC, 'A'},
		{elf.SHF_EXECINSTR, 'X'},
		{elf.SHF_MERGE, 'M'},
		{elf.SHF_STRINGS, 'S'},
		{elf.SHF_INFO_LINK, 'I'},
		{elf.SHF_LINK_ORDER, 'L'},
		{elf.SHF_OS_NONCONFORMING, 'O'},
		{elf.SHF_GROUP, 'G'},
		{elf.SHF_TLS, 'T'},
		{elf.SHF_COMPRESSED, 'C'},
	} {
		if f&fl.flag != 0 {
			sb.WriteByte(fl.c)
		}
	}
	return sb.String()
}
