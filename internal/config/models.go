package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the h5bank configuration file.
type Config struct {
	// Banks describes the dual-bank flash layout
	Banks BankConfig `yaml:"banks"`

	// Duplicate controls bank-2 section duplication
	Duplicate DuplicateConfig `yaml:"duplicate"`

	// Tools locates external binaries
	Tools ToolsConfig `yaml:"tools"`

	// Linker configures the NOLOAD patcher
	Linker LinkerConfig `yaml:"linker"`

	// Source is where the configuration was loaded from ("embedded" for defaults)
	Source string `yaml:"-"`
}

// BankConfig holds the flash bank base addresses.
type BankConfig struct {
	Bank1Base Address `yaml:"bank1_base"`
	Bank2Base Address `yaml:"bank2_base"`
}

// Offset returns the rebase offset from bank 1 to bank 2.
func (b BankConfig) Offset() uint64 {
	return uint64(b.Bank2Base - b.Bank1Base)
}

// Address is a flash address. It is written to YAML as a hex integer.
type Address uint64

// MarshalYAML emits the address as an untagged hex integer, e.g. 0x0C000000.
func (a Address) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: fmt.Sprintf("0x%08X", uint64(a)),
	}, nil
}

// DuplicateConfig lists the sections copied into bank 2.
type DuplicateConfig struct {
	// Sections are copied in this order; repeated names are copied once
	Sections []string `yaml:"sections"`

	// Suffix is appended to each copied section name
	Suffix string `yaml:"suffix"`

	// Types is the allow-list of section types that may be copied
	Types []string `yaml:"types"`

	// Extractor selects how section bytes are read: "native" or "objcopy"
	Extractor string `yaml:"extractor"`
}

// ToolsConfig locates external tools.
type ToolsConfig struct {
	// Objcopy is the arm-none-eabi-objcopy binary
	Objcopy string `yaml:"objcopy"`

	// Timeout bounds each external tool invocation (e.g., "30s", "1m")
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration parses Timeout.
func (t ToolsConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid tools.timeout %q: %w", t.Timeout, err)
	}
	return d, nil
}

// LinkerConfig locates the linker script and the section to patch.
type LinkerConfig struct {
	File    string `yaml:"file"`
	Section string `yaml:"section"`
}

// Extractor names accepted in duplicate.extractor.
const (
	ExtractorNative  = "native"
	ExtractorObjcopy = "objcopy"
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	// Field is the YAML path of the invalid value (e.g., "banks.bank2_base")
	Field string
	// Message explains what is wrong
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for values the tools cannot use.
func (c *Config) Validate() error {
	if c.Banks.Bank2Base <= c.Banks.Bank1Base {
		return &ValidationError{
			Field:   "banks.bank2_base",
			Message: fmt.Sprintf("0x%08x must be above bank1_base 0x%08x", c.Banks.Bank2Base, c.Banks.Bank1Base),
		}
	}
	if len(c.Duplicate.Sections) == 0 {
		return &ValidationError{Field: "duplicate.sections", Message: "at least one section is required"}
	}
	for i, name := range c.Duplicate.Sections {
		if name == "" {
			return &ValidationError{Field: fmt.Sprintf("duplicate.sections[%d]", i), Message: "empty section name"}
		}
	}
	if c.Duplicate.Suffix == "" {
		return &ValidationError{Field: "duplicate.suffix", Message: "suffix must not be empty"}
	}
	if len(c.Duplicate.Types) == 0 {
		return &ValidationError{Field: "duplicate.types", Message: "at least one section type is required"}
	}
	switch c.Duplicate.Extractor {
	case ExtractorNative, ExtractorObjcopy:
	default:
		return &ValidationError{
			Field:   "duplicate.extractor",
			Message: fmt.Sprintf("%q is not one of %q, %q", c.Duplicate.Extractor, ExtractorNative, ExtractorObjcopy),
		}
	}
	if _, err := c.Tools.TimeoutDuration(); err != nil {
		return &ValidationError{Field: "tools.timeout", Message: err.Error()}
	}
	if c.Linker.Section == "" {
		return &ValidationError{Field: "linker.section", Message: "section must not be empty"}
	}
	return nil
}
