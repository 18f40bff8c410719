package elfimage

import (
	"debug/elf"
	"fmt"
	"strings"
	"time"
)

// MissingSectionError is returned when a section to duplicate is missing
// from the image.
type MissingSectionError struct {
	// Section is the section name that was looked up
	Section string
	// Path is the ELF file
	Path string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("section %q not found in %s", e.Section, e.Path)
}

// SizeMismatchError is returned when the extracted bytes do not match the
// section header size.
type SizeMismatchError struct {
	Section string
	// Expected is sh_size
	Expected uint64
	// Actual is the number of bytes extracted
	Actual uint64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("incorrect size for section %q: header says %d bytes, extracted %d",
		e.Section, e.Expected, e.Actual)
}

// UnsupportedTypeError is returned for a section whose type is not in the
// duplication allow-list.
type UnsupportedTypeError struct {
	Section string
	Type    elf.SectionType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("section %q has unsupported type %s", e.Section, SectionTypeName(e.Type))
}

// SectionExistsError is returned when an appended section name is already
// present, typically because the image was duplicated before.
type SectionExistsError struct {
	Section string
}

func (e *SectionExistsError) Error() string {
	return fmt.Sprintf("section %q already exists (image already duplicated?)", e.Section)
}

// ToolExecutionError represents a failed external tool invocation.
type ToolExecutionError struct {
	// Tool is the binary that was run
	Tool string
	// Args are the command line arguments
	Args []string
	// ExitCode is the process exit code, -1 if it did not start
	ExitCode int
	// Stderr is the captured stderr output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *ToolExecutionError) Error() string {
	cmd := strings.Join(append([]string{e.Tool}, e.Args...), " ")
	if e.Err != nil {
		return fmt.Sprintf("%s failed (exit code %d): %v\nstderr: %s", cmd, e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit code %d)\nstderr: %s", cmd, e.ExitCode, e.Stderr)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// TimeoutError represents an external tool that ran past its deadline.
type TimeoutError struct {
	Tool    string
	Section string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s dumping section %q\n"+
		"Hint: raise tools.timeout in the config or pass --timeout",
		e.Tool, e.Timeout, e.Section)
}

// PrerequisiteError represents a missing or unusable external tool.
type PrerequisiteError struct {
	// Prerequisite is the name of the missing tool
	Prerequisite string
	// Details explains what is wrong
	Details string
	// Underlying error if any
	Err error
}

func (e *PrerequisiteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prerequisite %s: %s: %v", e.Prerequisite, e.Details, e.Err)
	}
	return fmt.Sprintf("prerequisite %s: %s", e.Prerequisite, e.Details)
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}
