package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/muurk/h5bank/internal/linker"
)

const script = `/* Sections */
SECTIONS
{
  .isr_vector :
  {
    KEEP(*(.isr_vector))
  } >FLASH

  .BACKUP_Section :
  {
    . = ALIGN(4);
  } >BACKUP
}
`

func scriptFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/proj/flash.ld", []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestNoload(t *testing.T) {
	fs := scriptFs(t)

	out, err := run(t, fs, "", "noload", "--linker-file", "/proj/flash.ld", "--backup")
	if err != nil {
		t.Fatalf("noload failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Linker script patched") {
		t.Errorf("success box missing\n%s", out)
	}

	data, _ := afero.ReadFile(fs, "/proj/flash.ld")
	if !strings.Contains(string(data), "  .BACKUP_Section (NOLOAD):\n") {
		t.Errorf("script not patched:\n%s", data)
	}
	backup, err := afero.ReadFile(fs, "/proj/flash.ld"+linker.BackupSuffix)
	if err != nil || string(backup) != script {
		t.Errorf("backup missing or wrong: %v", err)
	}

	out, err = run(t, fs, "", "noload", "--linker-file", "/proj/flash.ld")
	if err != nil {
		t.Fatalf("second noload failed: %v", err)
	}
	if !strings.Contains(out, "Already patched") {
		t.Errorf("expected the already-patched warning\n%s", out)
	}
}

func TestNoload_DryRun(t *testing.T) {
	fs := scriptFs(t)

	out, err := run(t, fs, "", "noload", "--linker-file", "/proj/flash.ld", "--dry-run")
	if err != nil {
		t.Fatalf("noload failed: %v", err)
	}
	if !strings.Contains(out, "(NOLOAD)") {
		t.Errorf("planned change not shown\n%s", out)
	}
	data, _ := afero.ReadFile(fs, "/proj/flash.ld")
	if string(data) != script {
		t.Error("dry run modified the script")
	}
}

func TestNoload_OtherSection(t *testing.T) {
	fs := scriptFs(t)
	if _, err := run(t, fs, "", "noload", "--linker-file", "/proj/flash.ld", "--section", ".isr_vector"); err != nil {
		t.Fatalf("noload failed: %v", err)
	}
	data, _ := afero.ReadFile(fs, "/proj/flash.ld")
	if !strings.Contains(string(data), ".isr_vector (NOLOAD):") {
		t.Errorf("section not patched:\n%s", data)
	}
}

func TestNoload_SectionNotFound(t *testing.T) {
	_, err := run(t, scriptFs(t), "", "noload", "--linker-file", "/proj/flash.ld", "--section", ".missing")
	var nf *linker.SectionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *SectionNotFoundError", err)
	}
	if nf.Path != "/proj/flash.ld" {
		t.Errorf("Path = %q", nf.Path)
	}
}

func TestNoload_ConfigFile(t *testing.T) {
	fs := scriptFs(t)
	cfg := "linker:\n  file: /proj/flash.ld\n"
	_ = afero.WriteFile(fs, "/h5bank.yaml", []byte(cfg), 0644)

	if _, err := run(t, fs, "", "--config", "/h5bank.yaml", "noload"); err != nil {
		t.Fatalf("noload failed: %v", err)
	}
	data, _ := afero.ReadFile(fs, "/proj/flash.ld")
	if !strings.Contains(string(data), ".BACKUP_Section (NOLOAD):") {
		t.Errorf("script from config not patched:\n%s", data)
	}
}

func TestNoload_MissingScript(t *testing.T) {
	if _, err := run(t, afero.NewMemMapFs(), "", "noload", "--linker-file", "/nope.ld"); err == nil {
		t.Error("expected an error for a missing script")
	}
}
