package elfimage

import (
	"bytes"
	"context"
	"debug/elf"
	"strings"
	"testing"

	"github.com/marcinbor85/gohex"
)

func TestWriteIntelHex(t *testing.T) {
	img := openFixture(t)
	copies, err := testPlan(".isr_vector", ".text").Build(context.Background(), img, NativeExtractor{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteIntelHex(&buf, copies); err != nil {
		t.Fatalf("WriteIntelHex failed: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(buf.String()), ":00000001FF") {
		t.Errorf("missing EOF record:\n%s", buf.String())
	}

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(&buf); err != nil {
		t.Fatalf("output does not parse: %v", err)
	}

	want := append(append([]byte(nil), copies[0].Data...), copies[1].Data...)
	got := mem.ToBinary(0x0C100000, uint32(len(want)), 0xFF)
	if !bytes.Equal(got, want) {
		t.Error("bank-2 image does not match copied sections")
	}
}

func TestWriteIntelHex_SkipsEmpty(t *testing.T) {
	copies := []SectionCopy{
		{Name: ".ARM_copy", Type: elf.SHT_PROGBITS, LoadAddr: 0x0C100000},
		{Name: ".text_copy", Type: elf.SHT_PROGBITS, LoadAddr: 0x0C100000, Data: []byte{1, 2, 3, 4}},
	}
	var buf bytes.Buffer
	if err := WriteIntelHex(&buf, copies); err != nil {
		t.Fatalf("WriteIntelHex failed: %v", err)
	}
}

func TestWriteIntelHex_AddressRange(t *testing.T) {
	copies := []SectionCopy{{Name: ".far", LoadAddr: 0xFFFFFFFE, Data: []byte{1, 2, 3, 4}}}
	if err := WriteIntelHex(&bytes.Buffer{}, copies); err == nil {
		t.Error("expected error for data past 4 GiB")
	}
}
