package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmOverwrite asks whether an existing file may be replaced. Only "y"
// or "yes" (case-insensitive) confirms; anything else, including EOF,
// declines. Pass the same *bufio.Reader to consecutive prompts so that
// buffered answers are not lost between them.
func ConfirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("  %s  %s exists. Overwrite? [y/N]: ", WarningMarker, path)))

	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	input, err := br.ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}

	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	_, _ = fmt.Fprintln(out, cancelStyle.Render("  Operation cancelled."))
	return false
}
