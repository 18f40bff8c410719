package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/h5bank/internal/config"
	"github.com/muurk/h5bank/internal/elfimage"
	"github.com/muurk/h5bank/internal/ui"
)

var (
	setupObjcopy string
	initPath     string
	initForce    bool
)

func init() {
	verifySetupCmd.Flags().StringVar(&setupObjcopy, "objcopy", "", "Path to arm-none-eabi-objcopy (default from config)")

	configInitCmd.Flags().StringVar(&initPath, "path", "", "Where to write the config (default: user config path)")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(verifySetupCmd, configCmd)
}

// verifySetupCmd implements the 'verify-setup' command
var verifySetupCmd = &cobra.Command{
	Use:   "verify-setup",
	Short: "Check that the external tools are usable",
	Long: `Check that arm-none-eabi-objcopy is installed and runs.

objcopy is only required with the objcopy extractor; with the default
native extractor a missing objcopy is reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		p := ui.NewPrinter(cmd.OutOrStdout())

		path := cfg.Tools.Objcopy
		if cmd.Flags().Changed("objcopy") {
			path = setupObjcopy
		}

		p.PrintHeader("Setup Verification", "h5-image verify-setup",
			ui.P("objcopy", path),
			ui.P("Extractor", cfg.Duplicate.Extractor),
			ui.P("Config", cfg.Source),
		)

		check := elfimage.CheckObjcopy(cmd.Context(), path)
		if check.Error == nil {
			p.PrintSuccess("Setup verified",
				ui.P("objcopy", check.Path),
				ui.P("Version", check.Version),
			)
			return nil
		}

		if cfg.Duplicate.Extractor != config.ExtractorObjcopy {
			p.PrintWarning("objcopy unavailable (not needed by the native extractor)",
				ui.P("Problem", check.Error.Error()),
			)
			return nil
		}

		p.PrintFailure("Setup incomplete", check.Error, []string{check.Message})
		return check.Error
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# source: %s\n", cfg.Source)
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default configuration to the user config path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		p := ui.NewPrinter(cmd.OutOrStdout())

		path := initPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		if err := config.WriteDefault(appFs, path, initForce); err != nil {
			p.PrintFailure("Config not written", err, []string{
				"Use --force to replace the existing file",
				"Or edit it directly: " + path,
			})
			return err
		}
		p.PrintSuccess("Config written", ui.P("Path", path))
		return nil
	},
}
