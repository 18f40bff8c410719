package elfimage

import (
	"bytes"
	"debug/elf"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func openFixture(t *testing.T) *Image {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/build/primary_Secure.elf", secureImage(t), 0644); err != nil {
		t.Fatal(err)
	}
	img, err := Open(fs, "/build/primary_Secure.elf")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return img
}

func TestOpen(t *testing.T) {
	img := openFixture(t)

	if img.Class() != elf.ELFCLASS32 || img.Machine() != elf.EM_ARM {
		t.Errorf("class=%v machine=%v", img.Class(), img.Machine())
	}

	var names []string
	for _, s := range img.Sections() {
		names = append(names, s.Name)
	}
	want := []string{".shstrtab", ".isr_vector", ".text", ".ARM.exidx", ".init_array", ".note.gnu.build-id"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("section names mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Open(fs, "/missing.elf"); err == nil {
		t.Error("expected error for missing file")
	}

	if err := afero.WriteFile(fs, "/bad.elf", []byte("\x7fELF garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(fs, "/bad.elf")
	if err == nil || !strings.Contains(err.Error(), "/bad.elf") {
		t.Errorf("expected parse error naming the file, got %v", err)
	}
}

func TestImage_Section(t *testing.T) {
	img := openFixture(t)

	s, err := img.Section(".text")
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	if s.Index != 3 || s.Addr != 0x0C000040 || s.Size != 0x1200 || s.Align != 8 {
		t.Errorf("unexpected .text: %+v", s)
	}
	if s.LoadAddr != s.Addr {
		t.Errorf("LoadAddr = 0x%x, want Addr without program headers", s.LoadAddr)
	}
	if s.TypeName() != "SHT_PROGBITS" {
		t.Errorf("TypeName = %q", s.TypeName())
	}

	exidx, err := img.Section(".ARM.exidx")
	if err != nil {
		t.Fatal(err)
	}
	if exidx.TypeName() != "SHT_ARM_EXIDX" {
		t.Errorf("TypeName = %q", exidx.TypeName())
	}
	if exidx.Link != 3 || exidx.LinkName != ".text" {
		t.Errorf("exidx link = %d (%q), want 3 (.text)", exidx.Link, exidx.LinkName)
	}

	_, err = img.Section(".gnu.sgstubs")
	var missing *MissingSectionError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSectionError, got %v", err)
	}
	if missing.Path != "/build/primary_Secure.elf" {
		t.Errorf("Path = %q", missing.Path)
	}
}

func TestImage_SectionData(t *testing.T) {
	img := openFixture(t)

	data, err := img.SectionData(".init_array")
	if err != nil {
		t.Fatalf("SectionData failed: %v", err)
	}
	if !bytes.Equal(data, fill(0x40, 4)) {
		t.Errorf("data = %x", data)
	}

	if _, err := img.SectionData(".bss"); err == nil {
		t.Error("expected error for missing section")
	}
}

func TestLoadAddr(t *testing.T) {
	progs := []elf.ProgHeader{
		{Type: elf.PT_LOAD, Off: 0x1000, Vaddr: 0x0C000000, Paddr: 0x0C000000, Filesz: 0x2000, Memsz: 0x2000},
		{Type: elf.PT_LOAD, Off: 0x3000, Vaddr: 0x30000000, Paddr: 0x0C002000, Filesz: 0x100, Memsz: 0x400},
		{Type: elf.PT_NOTE, Off: 0x3100, Filesz: 0x20},
	}

	tests := []struct {
		name string
		s    SectionInfo
		want uint64
	}{
		{"text in flash", SectionInfo{Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Addr: 0x0C000200, Offset: 0x1200, Size: 0x100}, 0x0C000200},
		{"data in ram", SectionInfo{Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x30000000, Offset: 0x3000, Size: 0x100}, 0x0C002000},
		{"bss", SectionInfo{Type: elf.SHT_NOBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x30000100, Offset: 0x3100, Size: 0x300}, 0x30000100},
		{"not allocated", SectionInfo{Type: elf.SHT_PROGBITS, Addr: 0, Offset: 0x1200, Size: 0x10}, 0},
		{"outside segments", SectionInfo{Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Addr: 0x0C100000, Offset: 0x5000, Size: 0x10}, 0x0C100000},
		{"straddles segment end", SectionInfo{Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Addr: 0x0C001F00, Offset: 0x2F00, Size: 0x200}, 0x0C001F00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loadAddr(progs, tt.s); got != tt.want {
				t.Errorf("loadAddr = 0x%08x, want 0x%08x", got, tt.want)
			}
		})
	}
}
