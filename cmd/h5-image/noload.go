package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/h5bank/internal/linker"
	"github.com/muurk/h5bank/internal/ui"
)

var (
	noloadFile    string
	noloadSection string
	noloadDryRun  bool
	noloadBackup  bool
)

func init() {
	f := noloadCmd.Flags()
	f.StringVarP(&noloadFile, "linker-file", "l", "", "Linker script to patch (default from config)")
	f.StringVarP(&noloadSection, "section", "s", "", "Output section to mark NOLOAD (default from config)")
	f.BoolVarP(&noloadDryRun, "dry-run", "n", false, "Show the changes without writing")
	f.BoolVar(&noloadBackup, "backup", false, "Keep the original script as <file>"+linker.BackupSuffix)

	rootCmd.AddCommand(noloadCmd)
}

// noloadCmd implements the 'noload' command
var noloadCmd = &cobra.Command{
	Use:   "noload",
	Short: "Mark the backup section NOLOAD in the linker script",
	Long: `Rewrite every "<section> :" declaration in a GNU ld script as
"<section> (NOLOAD):" so the section is allocated but not loaded.

Indentation and anything after the colon are kept. Declarations that are
already NOLOAD are left alone, so running the command twice is safe. A
script that never declares the section is an error.`,
	Example: `  # Patch the script named in the config
  h5-image noload

  # Preview the change to a specific script
  h5-image noload --linker-file STM32H573IIKXQ_FLASH.ld --dry-run

  # Patch a different section, keeping a backup
  h5-image noload --section .BACKUP_Section --backup`,
	Args: cobra.NoArgs,
	RunE: runNoload,
}

func runNoload(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := ui.NewPrinter(cmd.OutOrStdout())

	path := cfg.Linker.File
	if cmd.Flags().Changed("linker-file") {
		path = noloadFile
	}
	section := cfg.Linker.Section
	if cmd.Flags().Changed("section") {
		section = noloadSection
	}

	mode := "write"
	if noloadDryRun {
		mode = "dry run"
	}
	p.PrintHeader("NOLOAD Patch", "h5-image noload",
		ui.P("Linker script", path),
		ui.P("Section", section),
		ui.P("Mode", mode),
	)

	if path == "" {
		err := fmt.Errorf("no linker script given")
		p.PrintFailure("NOLOAD patch failed", err, []string{
			"Pass --linker-file or set linker.file in the config",
		})
		return err
	}

	report, err := linker.PatchFile(appFs, path, section, linker.PatchOptions{
		DryRun: noloadDryRun,
		Backup: noloadBackup,
	})
	if err != nil {
		var nf *linker.SectionNotFoundError
		tips := []string{"Check the --linker-file path"}
		if errors.As(err, &nf) {
			tips = []string{
				fmt.Sprintf("The script has no line declaring %q followed by ':'", section),
				"Check the section name with --section",
				"Regenerate the script from the template if it was edited by hand",
			}
		}
		p.PrintFailure("NOLOAD patch failed", err, tips)
		return err
	}

	if report.Changed() {
		var b strings.Builder
		for _, c := range report.Changes {
			fmt.Fprintf(&b, "line %d:\n  - %s\n  + %s\n", c.Line, strings.TrimSpace(c.Before), strings.TrimSpace(c.After))
		}
		p.PrintOutput("Changes", strings.TrimRight(b.String(), "\n"))
	}

	details := []ui.Param{
		ui.P("Patched", fmt.Sprintf("%d", report.Patched())),
		ui.P("Already NOLOAD", fmt.Sprintf("%d", report.AlreadyPatched)),
	}

	switch {
	case !report.Changed():
		p.PrintWarning("Already patched, nothing to do", details...)
	case noloadDryRun:
		p.PrintWarning("Dry run, script not written", details...)
	default:
		if noloadBackup {
			details = append(details, ui.P("Backup", path+linker.BackupSuffix))
		}
		p.PrintSuccess("Linker script patched", details...)
	}
	return nil
}
