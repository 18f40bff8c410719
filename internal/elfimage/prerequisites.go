package elfimage

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PrerequisiteCheck represents the result of checking a single tool.
type PrerequisiteCheck struct {
	// Name is the human-readable name of the prerequisite
	Name string
	// Available indicates whether the tool can be run
	Available bool
	// Path is the resolved binary path
	Path string
	// Version is the first line of --version output
	Version string
	// Message provides additional context (error message or success info)
	Message string
	// Error contains the underlying error if the check failed
	Error error
}

// CheckObjcopy verifies that objcopy at path (looked up in PATH when it
// has no directory) runs and is GNU objcopy.
func CheckObjcopy(ctx context.Context, path string) PrerequisiteCheck {
	if path == "" {
		path = DefaultObjcopy
	}
	check := PrerequisiteCheck{Name: path}

	resolved, err := exec.LookPath(path)
	if err != nil {
		check.Error = &PrerequisiteError{Prerequisite: path, Details: "not found in PATH", Err: err}
		check.Message = path + " not found in PATH\n" +
			"Install on macOS: brew install --cask gcc-arm-embedded\n" +
			"Install on Linux: sudo apt-get install binutils-arm-none-eabi\n" +
			"Or set duplicate.extractor: native to read sections without objcopy"
		return check
	}
	check.Path = resolved

	versionCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, resolved, "--version").Output()
	if err != nil {
		check.Error = &PrerequisiteError{Prerequisite: path, Details: "failed to run --version", Err: err}
		check.Message = fmt.Sprintf("%s found at %s but failed to execute: %v", path, resolved, err)
		return check
	}

	first, _, _ := strings.Cut(string(output), "\n")
	check.Version = strings.TrimSpace(first)
	if !strings.Contains(string(output), "objcopy") {
		check.Error = &PrerequisiteError{Prerequisite: path, Details: "does not appear to be objcopy"}
		check.Message = fmt.Sprintf("%s does not appear to be GNU objcopy", resolved)
		return check
	}

	check.Available = true
	check.Message = fmt.Sprintf("Found at %s", resolved)
	return check
}
