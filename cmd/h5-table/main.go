// H5-table decodes and checks the CRC32-protected configuration tables
// found in STM32H5 dual-bank boot images.
//
// A table is a run of 32-bit words dumped from flash: a two-word header
// (type/flags and length), the CRC32 of the header, the payload, and the
// CRC32 of the payload. Words are stored byte-swapped and every CRC is the
// Ethernet CRC32 over the native words.
//
// Tables can be read from the embedded profiles, from text or binary
// dumps, or straight from an ELF section.
//
// Usage:
//
//	h5-table [command] [flags]
//
// See 'h5-table --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

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

var rootCmd = &cobra.Command{
	Use:   "h5-table",
	Short: "STM32H5 CRC32 table decoder",
	Long: `Decode, validate and render the CRC32-protected tables of STM32H5 boot images.

Tables are word sequences laid out as:

  header[0..1] | header CRC | payload ... | payload CRC

Words are byte-swapped as stored; CRCs are Ethernet CRC32 over the
native (unswizzled) words, least significant byte of each word first.

Set H5BANK_LOG_LEVEL=debug for detailed logs.`,
	Version: version.Version,
	Example: `  # Check the embedded ACU table
  h5-table validate --profile acu

  # Inspect the loader table even though its payload CRC is wrong
  h5-table validate --profile loader --keep-going

  # Validate a table read from an ELF section
  h5-table validate --elf primary_Secure.elf --section .acu_table --offset 0x40 --count 25

  # CRC a list of native words
  h5-table crc 0x06000000 0x0000005a`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless H5BANK_LOG_LEVEL is set
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Line("h5-table"))
	},
}
