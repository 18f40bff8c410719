package elfimage

import (
	"debug/elf"
	"testing"
)

func TestParseSectionType(t *testing.T) {
	tests := []struct {
		in      string
		want    elf.SectionType
		wantErr bool
	}{
		{"SHT_PROGBITS", elf.SHT_PROGBITS, false},
		{"progbits", elf.SHT_PROGBITS, false},
		{" SHT_INIT_ARRAY ", elf.SHT_INIT_ARRAY, false},
		{"SHT_FINI_ARRAY", elf.SHT_FINI_ARRAY, false},
		{"SHT_PREINIT_ARRAY", elf.SHT_PREINIT_ARRAY, false},
		{"SHT_ARM_EXIDX", SHTArmExidx, false},
		{"arm_attributes", SHTArmAttributes, false},
		{"SHT_NOBITS", elf.SHT_NOBITS, false},
		{"SHT_BOGUS", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSectionType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSectionType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSectionType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSectionTypeName(t *testing.T) {
	if got := SectionTypeName(SHTArmExidx); got != "SHT_ARM_EXIDX" {
		t.Errorf("got %q", got)
	}
	if got := SectionTypeName(elf.SHT_PROGBITS); got != "SHT_PROGBITS" {
		t.Errorf("got %q", got)
	}
}

func TestFlagString(t *testing.T) {
	tests := []struct {
		flags elf.SectionFlag
		want  string
	}{
		{0, ""},
		{elf.SHF_ALLOC | elf.SHF_EXECINSTR, "AX"},
		{elf.SHF_WRITE | elf.SHF_ALLOC, "WA"},
		{elf.SHF_ALLOC | elf.SHF_LINK_ORDER, "AL"},
		{elf.SHF_MERGE | elf.SHF_STRINGS, "MS"},
	}
	for _, tt := range tests {
		if got := FlagString(tt.flags); got != tt.want {
			t.Errorf("FlagString(%v) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}
