package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "4,608 B -> 0x0c100040")
}

// Progress tracks a fixed number of steps and renders a bar with a step list.
type Progress struct {
	Steps   []Step
	Current int     // Current step (1-based)
	Total   int     // Total steps
	Percent float64 // Completed fraction (0.0 - 1.0)
	Width   int     // Terminal width
	bar     progress.Model
}

// NewProgress creates a progress tracker for totalSteps steps.
func NewProgress(totalSteps int) *Progress {
	steps := make([]Step, totalSteps)
	for i := range steps {
		steps[i] = Step{Number: i + 1, Status: StepPending}
	}
	p := &Progress{Steps: steps, Total: totalSteps}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sets the terminal width and resizes the bar to fit.
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and step count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// SetStepNames sets the names for all steps
func (p *Progress) SetStepNames(names []string) *Progress {
	for i, name := range names {
		if i < len(p.Steps) {
			p.Steps[i].Name = name
		}
	}
	return p
}

// UpdateStep updates a step's status and message. Out of range step
// numbers are ignored.
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	p.Steps[stepNumber-1].Status = status
	p.Steps[stepNumber-1].Message = message

	if status == StepRunning {
		p.Current = stepNumber
		return
	}

	completed := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(completed) / float64(p.Total)
	}
}

// RenderBar renders the progress bar with percentage and step counter.
func (p *Progress) RenderBar() string {
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent), p.Percent*100, p.Current, p.Total))
}

// RenderStep renders a single step line.
func (p *Progress) RenderStep(step Step) string {
	var (
		marker string
		style  lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", step.Number, p.Total))
	b.WriteString(style.Render(step.Name))

	// Keep markers in one column
	padding := 36 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// Render returns the bar followed by every step.
func (p *Progress) Render() string {
	lines := []string{p.RenderBar(), ""}
	for _, s := range p.Steps {
		lines = append(lines, p.RenderStep(s))
	}
	return strings.Join(lines, "\n")
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback is the function signature for step progress updates.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)
