package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Param is a labelled value shown in headers and result boxes. A slice of
// Params keeps its display order.
type Param struct {
	Key   string
	Value string
}

// P is shorthand for Param{key, value}.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Header represents a command header with title, command, and parameters.
type Header struct {
	Title   string  // e.g., "BANK 2 DUPLICATION"
	Command string  // e.g., "h5-image duplicate"
	Params  []Param // e.g., {"Input", "primary_Secure.elf"}
	Width   int     // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string, params ...Param) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	commandLine := HeaderCommandStyle.Render(h.Command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	content := topSection
	if len(h.Params) > 0 {
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", width-6))

		keyWidth := 0
		for _, p := range h.Params {
			if n := lipgloss.Width(p.Key); n > keyWidth {
				keyWidth = n
			}
		}

		paramLines := make([]string, 0, len(h.Params))
		for _, p := range h.Params {
			key := HeaderParamKeyStyle.Render(p.Key + ":" + strings.Repeat(" ", keyWidth-lipgloss.Width(p.Key)))
			paramLines = append(paramLines, key+" "+HeaderParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, topSection, divider, strings.Join(paramLines, "\n"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2). // Account for border characters
		Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
