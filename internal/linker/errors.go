package linker

import "fmt"

// SectionNotFoundError is returned when a script never declares the
// requested output section.
type SectionNotFoundError struct {
	// Section is the output section name that was searched for
	Section string
	// Path is the script file, empty when patching in-memory contents
	Path string
}

func (e *SectionNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("section %q is not declared in %s", e.Section, e.Path)
	}
	return fmt.Sprintf("section %q is not declared in linker script", e.Section)
}
