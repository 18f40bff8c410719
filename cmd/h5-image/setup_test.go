package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func writeMockObjcopy(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("mock objcopy needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "arm-none-eabi-objcopy")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVerifySetup(t *testing.T) {
	mock := writeMockObjcopy(t, `echo "GNU objcopy (Arm GNU Toolchain 13.3.Rel1) 2.42.0"`)

	out, err := run(t, afero.NewMemMapFs(), "", "verify-setup", "--objcopy", mock)
	if err != nil {
		t.Fatalf("verify-setup failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Setup verified") || !strings.Contains(out, "2.42.0") {
		t.Errorf("unexpected output\n%s", out)
	}
}

func TestVerifySetup_MissingWithNativeExtractor(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), "", "verify-setup", "--objcopy", "/nonexistent/objcopy")
	if err != nil {
		t.Fatalf("native extractor should only warn: %v", err)
	}
	if !strings.Contains(out, "objcopy unavailable") {
		t.Errorf("warning missing\n%s", out)
	}
}

func TestVerifySetup_MissingWithObjcopyExtractor(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/h5bank.yaml", []byte("duplicate:\n  extractor: objcopy\n"), 0644)

	if _, err := run(t, fs, "", "--config", "/h5bank.yaml", "verify-setup", "--objcopy", "/nonexistent/objcopy"); err == nil {
		t.Error("expected a failure when the objcopy extractor is configured")
	}
}

func TestVerifySetup_NotObjcopy(t *testing.T) {
	mock := writeMockObjcopy(t, `echo "GNU strip 2.42"`)
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/h5bank.yaml", []byte("duplicate:\n  extractor: objcopy\n"), 0644)

	if _, err := run(t, fs, "", "--config", "/h5bank.yaml", "verify-setup", "--objcopy", mock); err == nil {
		t.Error("expected a failure for a binary that is not objcopy")
	}
}
