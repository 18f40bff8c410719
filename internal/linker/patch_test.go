package linker

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const script = `MEMORY
{
  FLASH (rx) : ORIGIN = 0x0C000000, LENGTH = 1024K
  BACKUP (rx) : ORIGIN = 0x0C100000, LENGTH = 1024K
}

SECTIONS
{
  .text :
  {
    *(.text*)
  } >FLASH

  .BACKUP_Section :
  {
    KEEP(*(.BACKUP_Section))
  } >BACKUP
}
`

func TestPatchNoload(t *testing.T) {
	out, report, err := PatchNoload(script, ".BACKUP_Section")
	if err != nil {
		t.Fatalf("PatchNoload failed: %v", err)
	}

	want := []LineChange{{
		Line:   14,
		Before: "  .BACKUP_Section :",
		After:  "  .BACKUP_Section (NOLOAD):",
	}}
	if diff := cmp.Diff(want, report.Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(out, "\n  .BACKUP_Section (NOLOAD):\n  {\n") {
		t.Errorf("patched script missing NOLOAD declaration:\n%s", out)
	}
	if strings.Count(out, "\n") != strings.Count(script, "\n") {
		t.Error("line count changed")
	}
	if !strings.Contains(out, "KEEP(*(.BACKUP_Section))") {
		t.Error("input section reference should be untouched")
	}
}

func TestPatchNoload_Idempotent(t *testing.T) {
	once, _, err := PatchNoload(script, ".BACKUP_Section")
	if err != nil {
		t.Fatal(err)
	}

	twice, report, err := PatchNoload(once, ".BACKUP_Section")
	if err != nil {
		t.Fatalf("second PatchNoload failed: %v", err)
	}
	if twice != once {
		t.Errorf("second pass changed contents:\n%s", twice)
	}
	if report.Changed() {
		t.Error("second pass should report no changes")
	}
	if report.AlreadyPatched != 1 {
		t.Errorf("AlreadyPatched = %d, want 1", report.AlreadyPatched)
	}
}

func TestPatchNoload_Lines(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"space before colon", ".BACKUP_Section :", ".BACKUP_Section (NOLOAD):"},
		{"no space", ".BACKUP_Section:", ".BACKUP_Section (NOLOAD):"},
		{"tab indent", "\t.BACKUP_Section :", "\t.BACKUP_Section (NOLOAD):"},
		{"brace on same line", "  .BACKUP_Section : {", "  .BACKUP_Section (NOLOAD): {"},
		{"attributes kept", ".BACKUP_Section : ALIGN(8)", ".BACKUP_Section (NOLOAD): ALIGN(8)"},
		{"crlf", ".BACKUP_Section :\r", ".BACKUP_Section (NOLOAD):\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, report, err := PatchNoload(tt.line, ".BACKUP_Section")
			if err != nil {
				t.Fatalf("PatchNoload failed: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
			if report.Patched() != 1 {
				t.Errorf("Patched() = %d, want 1", report.Patched())
			}
		})
	}
}

func TestPatchNoload_AlreadyPatchedForms(t *testing.T) {
	for _, line := range []string{
		".BACKUP_Section (NOLOAD):",
		".BACKUP_Section (NOLOAD) :",
		"  .BACKUP_Section ( NOLOAD ) : {",
	} {
		out, report, err := PatchNoload(line, ".BACKUP_Section")
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		if out != line || report.AlreadyPatched != 1 {
			t.Errorf("%q: got %q, already=%d", line, out, report.AlreadyPatched)
		}
	}
}

func TestPatchNoload_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"absent", "SECTIONS\n{\n  .text :\n  {\n  }\n}\n"},
		{"longer name", ".BACKUP_Section2 :\n"},
		{"input section only", "  KEEP(*(.BACKUP_Section))\n"},
		{"dot is literal", "xBACKUP_Section :\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PatchNoload(tt.contents, ".BACKUP_Section")
			var nf *SectionNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected *SectionNotFoundError, got %v", err)
			}
			if nf.Section != ".BACKUP_Section" {
				t.Errorf("Section = %q", nf.Section)
			}
		})
	}
}

func TestPatchNoload_EmptySection(t *testing.T) {
	if _, _, err := PatchNoload(script, " "); err == nil {
		t.Error("expected error for empty section name")
	}
}

func TestPatchFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/proj/STM32H573IIKXQ_FLASH_MMT_TEMPLATE.ld"
	if err := afero.WriteFile(fs, path, []byte(script), 0640); err != nil {
		t.Fatal(err)
	}

	report, err := PatchFile(fs, path, ".BACKUP_Section", PatchOptions{Backup: true})
	if err != nil {
		t.Fatalf("PatchFile failed: %v", err)
	}
	if report.Patched() != 1 {
		t.Errorf("Patched() = %d, want 1", report.Patched())
	}

	got, _ := afero.ReadFile(fs, path)
	if !strings.Contains(string(got), ".BACKUP_Section (NOLOAD):") {
		t.Errorf("file not patched:\n%s", got)
	}

	backup, err := afero.ReadFile(fs, path+BackupSuffix)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != script {
		t.Error("backup does not match original")
	}

	info, _ := fs.Stat(path)
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
}

func TestPatchFile_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/flash.ld"
	if err := afero.WriteFile(fs, path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	report, err := PatchFile(fs, path, ".BACKUP_Section", PatchOptions{DryRun: true, Backup: true})
	if err != nil {
		t.Fatalf("PatchFile failed: %v", err)
	}
	if !report.Changed() {
		t.Error("dry run should still report the change")
	}

	got, _ := afero.ReadFile(fs, path)
	if string(got) != script {
		t.Error("dry run modified the file")
	}
	if exists, _ := afero.Exists(fs, path+BackupSuffix); exists {
		t.Error("dry run wrote a backup")
	}
}

func TestPatchFile_NoChangeNoWrite(t *testing.T) {
	base := afero.NewMemMapFs()
	path := "/flash.ld"
	patched, _, _ := PatchNoload(script, ".BACKUP_Section")
	if err := afero.WriteFile(base, path, []byte(patched), 0644); err != nil {
		t.Fatal(err)
	}

	// A read-only view fails any write attempt.
	fs := afero.NewReadOnlyFs(base)
	report, err := PatchFile(fs, path, ".BACKUP_Section", PatchOptions{Backup: true})
	if err != nil {
		t.Fatalf("PatchFile on patched script failed: %v", err)
	}
	if report.AlreadyPatched != 1 || report.Changed() {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestPatchFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	if _, err := PatchFile(fs, "/missing.ld", ".BACKUP_Section", PatchOptions{}); err == nil {
		t.Error("expected error for missing file")
	}

	if err := afero.WriteFile(fs, "/other.ld", []byte(".text :\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := PatchFile(fs, "/other.ld", ".BACKUP_Section", PatchOptions{})
	var nf *SectionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *SectionNotFoundError, got %v", err)
	}
	if nf.Path != "/other.ld" {
		t.Errorf("Path = %q", nf.Path)
	}
	if !strings.Contains(err.Error(), "/other.ld") {
		t.Errorf("error should name the file: %v", err)
	}
}
