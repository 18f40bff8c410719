// H5-image prepares STM32H5 secure images for dual-bank operation.
//
// It covers the image side of the dual-bank workflow:
//
//   - Listing the sections of an ELF image
//   - Duplicating the secure sections into bank 2 (rebased copies appended
//     to the ELF, optionally also as Intel HEX)
//   - Marking the backup section NOLOAD in the linker script
//   - Checking that arm-none-eabi-objcopy is usable
//
// Bank addresses, the section list and tool paths come from the
// configuration file; see 'h5-image config show'.
//
// See 'h5-image --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/muurk/h5bank/internal/config"
	"github.com/muurk/h5bank/internal/logging"
	"github.com/muurk/h5bank/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	// appFs is the file system every command reads and writes.
	appFs = afero.NewOsFs()

	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "h5-image",
	Short: "STM32H5 dual-bank image tooling",
	Long: `Prepare STM32H5 secure images for dual-bank operation.

Duplication copies the configured secure sections, rebased from bank 1
(0x0C000000) to bank 2 (0x0C100000) by default, into new "<name>_copy"
sections of the ELF. The copies are not part of any program header, so
they are carried by the file without changing what the image loads.

Configuration is read from the user config file if present
(see 'h5-image config init'), otherwise from embedded defaults.

Set H5BANK_LOG_LEVEL=debug for detailed logs.`,
	Version: version.Version,
	Example: `  # List the sections of a secure image
  h5-image sections build/primary_Secure.elf

  # Append the bank-2 copies and write an Intel HEX of them
  h5-image duplicate build/primary_Secure.elf --hex build/bank2.hex

  # Mark the backup section NOLOAD in the linker script
  h5-image noload --linker-file STM32H573IIKXQ_FLASH.ld

  # Check objcopy
  h5-image verify-setup`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flags and arguments are valid by now; failures below are not usage errors
		cmd.SilenceUsage = true

		// Silent unless H5BANK_LOG_LEVEL is set
		if err := logging.InitializeFromEnv(); err != nil {
			return err
		}
		if !needsConfig(cmd) {
			return nil
		}
		c, err := config.LoadFS(appFs, configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// skipConfig is the annotation marking commands that run without loading
// the configuration, so they still work when the config file is broken.
const skipConfig = "h5bank/skip-config"

func needsConfig(cmd *cobra.Command) bool {
	_, skip := cmd.Annotations[skipConfig]
	return !skip
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config, then embedded defaults)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipConfig: ""},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Line("h5-image"))
	},
}
