// Package ui provides terminal output components for the h5-table and
// h5-image CLIs.
//
// Components are rendered with Lipgloss and follow a "run once and exit"
// pattern: they format output for a single command without taking over the
// terminal.
//
//   - Header: command banner showing operation name and parameters
//   - Progress: progress bar (bubbles/progress) with a step list
//   - Result: success, warning and failure boxes
//   - OutputBox: captured external tool output
//
// Runner ties them together for multi-step commands:
//
//	runner := ui.NewRunner(ui.NewPrinter(cmd.OutOrStdout()), ui.RunnerConfig{
//	    Title:     "Bank 2 Duplication",
//	    Command:   "h5-image duplicate",
//	    Params:    []ui.Param{ui.P("Input", in)},
//	    StepNames: plan.UniqueSections(),
//	})
//
//	err := runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, "", ui.StepComplete, "4,608 B")
//	    return []ui.Param{ui.P("Output", out)}, nil
//	})
//
// Logging is controlled separately through H5BANK_LOG_LEVEL; when unset zap
// is silent so only these components reach the terminal.
package ui
