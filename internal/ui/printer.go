package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Printer writes UI components to a writer at a fixed width.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer that writes to w. If w is nil, os.Stdout is
// used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// SetWidth overrides the detected terminal width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box followed by a blank line.
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Newline()
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Newline()
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintFailure prints a failure result box with troubleshooting tips
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	p.Newline()
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintOutput prints captured tool output in a box
func (p *Printer) PrintOutput(title, content string) {
	p.Newline()
	p.Println(NewOutputBox(title, content).SetWidth(p.width).SetMaxLines(20).Render())
}

// RunnerConfig holds configuration for a multi-step command.
type RunnerConfig struct {
	Title           string   // e.g., "Bank 2 Duplication"
	Command         string   // e.g., "h5-image duplicate"
	Params          []Param  // Shown in the header
	StepNames       []string // One per step
	Troubleshooting []string // Shown when the operation fails
}

// Operation is the work a Runner performs. It reports progress through
// onStep and returns the details for the success box.
type Operation func(onStep StepCallback) ([]Param, error)

// Runner orchestrates the header, step progress and result flow of a
// multi-step command.
type Runner struct {
	config   RunnerConfig
	printer  *Printer
	progress *Progress
}

// NewRunner creates a runner printing to p.
func NewRunner(p *Printer, config RunnerConfig) *Runner {
	return &Runner{
		config:   config,
		printer:  p,
		progress: NewProgress(len(config.StepNames)).SetWidth(p.width).SetStepNames(config.StepNames),
	}
}

// Progress returns the runner's step tracker.
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run prints the header, executes op and prints the result box.
func (r *Runner) Run(op Operation) error {
	start := time.Now()
	r.printer.PrintHeader(r.config.Title, r.config.Command, r.config.Params...)

	details, err := op(r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	if err != nil {
		r.printer.PrintFailure(r.config.Title+" failed", err, r.config.Troubleshooting)
		return err
	}

	r.printer.Newline()
	r.printer.Println(r.progress.RenderBar())
	details = append(details, P("Duration", duration.String()))
	r.printer.PrintSuccess(r.config.Title+" complete", details...)
	return nil
}

func (r *Runner) onStep(stepNumber int, name string, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	if name != "" {
		r.progress.Steps[stepNumber-1].Name = name
	}
	r.progress.UpdateStep(stepNumber, status, message)

	step := r.progress.Steps[stepNumber-1]
	switch status {
	case StepComplete, StepFailed, StepSkipped:
		r.printer.Println(r.progress.RenderStep(step))
	case StepRunning:
		// Overwritten by the final status line
		_, _ = fmt.Fprint(r.printer.out, r.progress.RenderStep(step)+"\r")
	}
}
