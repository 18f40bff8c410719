package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/muurk/h5bank/internal/config"
	"github.com/muurk/h5bank/internal/elfimage"
	"github.com/muurk/h5bank/internal/logging"
	"github.com/muurk/h5bank/internal/ui"
)

// isTerminal reports whether an overwrite prompt can be answered.
var isTerminal = ui.IsTerminal

var (
	dupOutput    string
	dupHex       string
	dupExtractor string
	dupObjcopy   string
	dupTimeout   string
	dupSuffix    string
	dupForce     bool
)

func init() {
	f := duplicateCmd.Flags()
	f.StringVarP(&dupOutput, "output", "o", "", "Output ELF (default: <input>_dup.elf)")
	f.StringVar(&dupHex, "hex", "", "Also write the bank-2 copies as Intel HEX")
	f.StringVar(&dupExtractor, "extractor", "", "Section reader: native or objcopy (default from config)")
	f.StringVar(&dupObjcopy, "objcopy", "", "Path to arm-none-eabi-objcopy (default from config)")
	f.StringVar(&dupTimeout, "timeout", "", "Timeout per objcopy run (e.g., 30s; default from config)")
	f.StringVar(&dupSuffix, "suffix", "", "Suffix for copied section names (default from config)")
	f.BoolVarP(&dupForce, "force", "f", false, "Overwrite existing output files without asking")

	rootCmd.AddCommand(sectionsCmd, duplicateCmd)
}

// sectionsCmd implements the 'sections' command
var sectionsCmd = &cobra.Command{
	Use:   "sections <elf>",
	Short: "List the sections of an ELF image",
	Long: `List every named section of an ELF image with its type, flags, virtual
address, load address, file offset and size.`,
	Example: `  h5-image sections build/primary_Secure.elf`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		img, err := elfimage.Open(appFs, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s %s %s\n\n", args[0], img.Class(), img.ByteOrder(), img.Machine())
		return elfimage.WriteSectionTable(out, img.Sections())
	},
}

// duplicateCmd implements the 'duplicate' command
var duplicateCmd = &cobra.Command{
	Use:   "duplicate <input.elf>",
	Short: "Append bank-2 copies of the secure sections",
	Long: `Copy the configured sections of a secure image into new sections
rebased to bank 2 and write the result as a new ELF.

This command will:
  1. Look up every configured section (a missing one is an error)
  2. Check its type against the allow-list
  3. Read its bytes (natively or with arm-none-eabi-objcopy)
  4. Check the byte count against the section header
  5. Append "<name><suffix>" at address + (bank2_base - bank1_base)
  6. Write the output ELF and, with --hex, an Intel HEX of the copies

The input file is never modified. Duplicating an image that already holds
copies is refused.`,
	Example: `  # Default output: build/primary_Secure_dup.elf
  h5-image duplicate build/primary_Secure.elf

  # Read sections with objcopy instead of natively
  h5-image duplicate build/primary_Secure.elf --extractor objcopy

  # Write the bank-2 image for a flasher as well
  h5-image duplicate build/primary_Secure.elf -o out.elf --hex bank2.hex --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicate,
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := ui.NewPrinter(cmd.OutOrStdout())
	input := args[0]

	if err := applyDuplicateFlags(cmd); err != nil {
		p.PrintFailure("Invalid options", err, []string{
			"Valid extractors: native, objcopy",
			"Timeouts use Go duration syntax: 30s, 2m",
		})
		return err
	}

	output := dupOutput
	if output == "" {
		output = defaultOutput(input)
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		err := fmt.Errorf("output %s would overwrite the input", output)
		p.PrintFailure("Invalid options", err, []string{"Pick a different --output"})
		return err
	}

	answers := bufio.NewReader(cmd.InOrStdin())
	for _, path := range []string{output, dupHex} {
		if path == "" {
			continue
		}
		if err := confirmWrite(cmd, answers, path); err != nil {
			return err
		}
	}

	img, err := elfimage.Open(appFs, input)
	if err != nil {
		p.PrintFailure("Cannot read input", err, []string{
			"Check the path to the ELF image",
			"Build the secure project first",
		})
		return err
	}

	mode := os.FileMode(0644)
	if info, err := appFs.Stat(input); err == nil {
		mode = info.Mode().Perm()
	}

	plan, err := elfimage.NewPlan(cfg)
	if err != nil {
		p.PrintFailure("Invalid configuration", err, nil)
		return err
	}
	extractor, err := elfimage.NewExtractor(cfg, logging.GetLogger())
	if err != nil {
		p.PrintFailure("Invalid configuration", err, nil)
		return err
	}

	names := plan.UniqueSections()
	steps := make([]string, 0, len(names)+2)
	for _, name := range names {
		steps = append(steps, "Copy "+name)
	}
	steps = append(steps, "Write "+output)
	if dupHex != "" {
		steps = append(steps, "Write "+dupHex)
	}

	runner := ui.NewRunner(p, ui.RunnerConfig{
		Title:   "Bank 2 Duplication",
		Command: "h5-image duplicate",
		Params: []ui.Param{
			ui.P("Input", input),
			ui.P("Output", output),
			ui.P("Offset", fmt.Sprintf("0x%08x", plan.Offset)),
			ui.P("Extractor", cfg.Duplicate.Extractor),
			ui.P("Config", cfg.Source),
		},
		StepNames: steps,
		Troubleshooting: []string{
			"List the image sections: h5-image sections " + input,
			"Adjust duplicate.sections in the config (h5-image config show)",
			"Check objcopy: h5-image verify-setup",
			"Use --extractor native to read sections without objcopy",
		},
	})

	err = runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		done := 0
		progress := func(n, total int, c elfimage.SectionCopy) {
			done = n
			onStep(n, "", ui.StepComplete, fmt.Sprintf("%s at 0x%08x, %s", c.Name, c.Addr, humanize.IBytes(uint64(len(c.Data)))))
			if n < total {
				onStep(n+1, "", ui.StepRunning, "")
			}
		}

		if len(names) > 0 {
			onStep(1, "", ui.StepRunning, "")
		}
		data, copies, err := plan.Duplicate(cmd.Context(), img, extractor, progress)
		if err != nil {
			onStep(done+1, "", ui.StepFailed, firstLine(err.Error()))
			return nil, err
		}

		step := len(names) + 1
		onStep(step, "", ui.StepRunning, "")
		if err := afero.WriteFile(appFs, output, data, mode); err != nil {
			onStep(step, "", ui.StepFailed, err.Error())
			return nil, fmt.Errorf("failed to write %s: %w", output, err)
		}
		// WriteFile keeps the mode of a file it replaces
		if err := appFs.Chmod(output, mode); err != nil {
			onStep(step, "", ui.StepFailed, err.Error())
			return nil, fmt.Errorf("failed to set mode of %s: %w", output, err)
		}
		onStep(step, "", ui.StepComplete, humanize.IBytes(uint64(len(data))))

		var total uint64
		for _, c := range copies {
			total += uint64(len(c.Data))
		}
		details := []ui.Param{
			ui.P("Output", output),
			ui.P("Sections copied", fmt.Sprintf("%d", len(copies))),
			ui.P("Bytes copied", humanize.IBytes(total)),
		}

		if dupHex != "" {
			step++
			onStep(step, "", ui.StepRunning, "")
			var buf bytes.Buffer
			if err := elfimage.WriteIntelHex(&buf, copies); err != nil {
				onStep(step, "", ui.StepFailed, err.Error())
				return nil, err
			}
			if err := afero.WriteFile(appFs, dupHex, buf.Bytes(), 0644); err != nil {
				onStep(step, "", ui.StepFailed, err.Error())
				return nil, fmt.Errorf("failed to write %s: %w", dupHex, err)
			}
			onStep(step, "", ui.StepComplete, humanize.IBytes(uint64(buf.Len())))
			details = append(details, ui.P("Intel HEX", dupHex))
		}
		return details, nil
	})

	var toolErr *elfimage.ToolExecutionError
	if errors.As(err, &toolErr) && strings.TrimSpace(toolErr.Stderr) != "" {
		p.PrintOutput(toolErr.Tool+" stderr", toolErr.Stderr)
	}
	return err
}

// applyDuplicateFlags overrides the loaded configuration with explicit
// flags and revalidates it.
func applyDuplicateFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("extractor") {
		cfg.Duplicate.Extractor = strings.ToLower(dupExtractor)
	}
	if f.Changed("objcopy") {
		cfg.Tools.Objcopy = dupObjcopy
		if !f.Changed("extractor") {
			cfg.Duplicate.Extractor = config.ExtractorObjcopy
		}
	}
	if f.Changed("timeout") {
		cfg.Tools.Timeout = dupTimeout
	}
	if f.Changed("suffix") {
		cfg.Duplicate.Suffix = dupSuffix
	}
	return cfg.Validate()
}

// defaultOutput derives "<dir>/<name>_dup<ext>" from the input path.
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		ext = ".elf"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_dup" + ext
}

// confirmWrite returns an error unless path may be written: it does not
// exist, --force is set, or the user agrees to overwrite it. Answers are
// read from in, which is shared between prompts.
func confirmWrite(cmd *cobra.Command, in *bufio.Reader, path string) error {
	exists, err := afero.Exists(appFs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists || dupForce {
		return nil
	}
	if !isTerminal() {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if !ui.ConfirmOverwrite(in, cmd.OutOrStdout(), path) {
		return fmt.Errorf("not overwriting %s", path)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
