package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OutputBox displays captured tool output, such as objcopy stderr.
type OutputBox struct {
	Title    string // e.g., "objcopy stderr"
	Content  string
	Width    int
	MaxLines int // Maximum lines to display (0 = unlimited)
}

// NewOutputBox creates an output box
func NewOutputBox(title, content string) *OutputBox {
	return &OutputBox{
		Title:   title,
		Content: content,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (o *OutputBox) SetWidth(width int) *OutputBox {
	o.Width = width
	return o
}

// SetMaxLines keeps only the last max lines of output.
func (o *OutputBox) SetMaxLines(max int) *OutputBox {
	o.MaxLines = max
	return o
}

// Render returns the styled box as a string
func (o *OutputBox) Render() string {
	width := o.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := strings.Split(strings.TrimRight(o.Content, "\n"), "\n")
	if o.MaxLines > 0 && len(lines) > o.MaxLines {
		skipped := len(lines) - o.MaxLines
		lines = append([]string{fmt.Sprintf("... (%d earlier lines)", skipped)}, lines[skipped:]...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		OutputTitleStyle.Render(o.Title),
		"",
		OutputContentStyle.Render(strings.Join(lines, "\n")),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-4).
		Padding(0, 1).
		Render(content)
}

// String implements fmt.Stringer
func (o *OutputBox) String() string {
	return o.Render()
}
