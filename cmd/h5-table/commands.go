package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/muurk/h5bank/internal/table"
	"github.com/muurk/h5bank/internal/ui"
)

// appFs is the file system commands read from.
var appFs = afero.NewOsFs()

var sourceTips = []string{
	"Pick exactly one of --profile, --file or --elf",
	"List embedded tables: h5-table profiles",
	"Text dumps are hex or decimal words separated by commas or spaces",
}

func init() {
	validateOpts.register(validateCmd)
	validateCmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Report every CRC mismatch and render the payload anyway")
	validateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the payload")

	renderOpts.register(renderCmd)

	crcCmd.Flags().StringVarP(&crcFile, "file", "f", "", "Read words from a text file ('-' for stdin)")
	crcCmd.Flags().BoolVar(&crcUnswizzle, "unswizzle", false, "Input words are in stored order")
	crcCmd.Flags().BoolVar(&crcBytes, "bytes", false, "CRC the raw bytes of --file instead of words")

	encodeCmd.Flags().StringVarP(&encodeFile, "file", "f", "", "Read native payload words from a text file ('-' for stdin)")
	encodeCmd.Flags().StringVar(&encodeType, "type", "0x00000000", "Type/flags header word")
	encodeCmd.Flags().Int64Var(&encodeLength, "length", -1, "Length header word (-1 = payload word count)")
	encodeCmd.Flags().IntVar(&encodePerLine, "per-line", 4, "Words per output line")

	profilesCmd.AddCommand(profilesShowCmd)

	rootCmd.AddCommand(validateCmd, renderCmd, crcCmd, encodeCmd, profilesCmd)
}

// --- validate ---

var (
	validateOpts sourceOptions
	keepGoing    bool
	quiet        bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a table's header and payload CRCs",
	Long: `Unswizzle a stored table, check the header CRC and payload CRC, and
print the payload one word per line with its bit range.

By default validation stops at the first mismatch. With --keep-going both
CRCs are reported and the payload is printed regardless; the command still
exits non-zero if either CRC is wrong.`,
	Example: `  h5-table validate --profile acu
  h5-table validate --profile loader --keep-going
  h5-table validate --file table.txt --length-from-header
  h5-table validate --file dump.bin --format bin-le --offset 0x100 --count 44`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	p := ui.NewPrinter(cmd.OutOrStdout())

	src, err := validateOpts.load(cmd, appFs, cmd.InOrStdin())
	if err != nil {
		p.PrintFailure("Invalid input", err, sourceTips)
		return err
	}

	p.PrintHeader("Table validation", "h5-table validate",
		ui.P("Source", src.label),
		ui.P("Words", strconv.Itoa(len(src.words))),
		ui.P("Order", orderName(src.layout)),
	)

	if !keepGoing {
		t, err := src.layout.Validate(src.words)
		if err != nil {
			p.PrintFailure("Table invalid", err, troubleshooting(err))
			return err
		}
		printTable(p.Writer(), t, src.layout)
		p.PrintSuccess("Table valid", tableDetails(t)...)
		return nil
	}

	t, err := src.layout.Decode(src.words)
	if err != nil {
		p.PrintFailure("Table invalid", err, troubleshooting(err))
		return err
	}

	problems := t.Check()
	printTable(p.Writer(), t, src.layout)
	if len(problems) == 0 {
		p.PrintSuccess("Table valid", tableDetails(t)...)
		return nil
	}

	errs := make([]error, 0, len(problems))
	for _, prob := range problems {
		p.PrintWarning(prob.Error(),
			ui.P("Stored", fmt.Sprintf("0x%08x", prob.Expected)),
			ui.P("Computed", fmt.Sprintf("0x%08x", prob.Actual)),
		)
		errs = append(errs, prob)
	}
	return fmt.Errorf("table has %d CRC mismatch(es): %w", len(problems), errors.Join(errs...))
}

func printTable(w io.Writer, t *table.Table, layout table.Layout) {
	if quiet {
		return
	}
	fmt.Fprintf(w, "\nLength is %d words\n\nTable data:\n\n", t.DeclaredLength())
	for _, line := range table.Render(t.Payload, table.RenderOptions{Ascending: layout.Ascending, Indent: table.DefaultIndent}) {
		fmt.Fprintln(w, line)
	}
}

func tableDetails(t *table.Table) []ui.Param {
	return []ui.Param{
		ui.P("Type", fmt.Sprintf("0x%08x", t.Type())),
		ui.P("Length", strconv.FormatUint(uint64(t.DeclaredLength()), 10)),
		ui.P("Payload words", strconv.Itoa(len(t.Payload))),
		ui.P("Header CRC", fmt.Sprintf("0x%08x", t.HeaderCRC)),
		ui.P("Payload CRC", fmt.Sprintf("0x%08x", t.PayloadCRC)),
	}
}

func orderName(l table.Layout) string {
	if l.Ascending {
		return "ascending (word 0 first)"
	}
	return "descending (highest word first)"
}

// troubleshooting returns tips for a validation failure.
func troubleshooting(err error) []string {
	switch {
	case errors.Is(err, table.ErrHeaderCRC):
		return []string{
			"The dump may be misaligned: check --offset and --count",
			"Words may already be unswizzled; the tool expects stored order",
			"Try --format bin-be if the blob was saved big-endian",
		}
	case errors.Is(err, table.ErrPayloadCRC):
		return []string{
			"The header is intact; the payload length or contents differ",
			"Try --length-from-header to catch a truncated dump",
			"Use --keep-going to render the payload anyway",
		}
	case errors.Is(err, table.ErrLength):
		return []string{
			"The header length word disagrees with the number of words read",
			"Adjust --count to header length + 4 words",
		}
	case errors.Is(err, table.ErrMalformed):
		return []string{
			"A table needs at least the header, the header CRC and the payload CRC",
		}
	default:
		return nil
	}
}

// --- render ---

var renderOpts sourceOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the payload words without checking CRCs",
	Example: `  h5-table render --profile loader
  h5-table render --file table.txt --ascending`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		src, err := renderOpts.load(cmd, appFs, cmd.InOrStdin())
		if err != nil {
			return err
		}
		t, err := src.layout.Decode(src.words)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, line := range table.Render(t.Payload, table.RenderOptions{Ascending: src.layout.Ascending, Indent: table.DefaultIndent}) {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

// --- crc ---

var (
	crcFile      string
	crcUnswizzle bool
	crcBytes     bool
)

var crcCmd = &cobra.Command{
	Use:   "crc [word...]",
	Short: "Compute the Ethernet CRC32 of native words",
	Example: `  h5-table crc 0x06000000 0x0000005a
  h5-table crc --unswizzle 0x00000006 0x5a000000
  h5-table crc --bytes --file blob.bin`,
	RunE: runCRC,
}

func runCRC(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if crcBytes {
		if crcFile == "" {
			return fmt.Errorf("--bytes requires --file")
		}
		data, err := readInput(cmd, crcFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "0x%08x\n", table.ChecksumBytes(data))
		return nil
	}

	words, err := wordsFromArgs(cmd, args, crcFile)
	if err != nil {
		return err
	}
	if crcUnswizzle {
		words = table.UnswizzleAll(words)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "0x%08x\n", table.EthernetCRC32(words))
	return nil
}

// --- encode ---

var (
	encodeFile    string
	encodeType    string
	encodeLength  int64
	encodePerLine int
)

var encodeCmd = &cobra.Command{
	Use:   "encode [word...]",
	Short: "Build a stored-order table from native payload words",
	Long: `Build a table from native payload words: the header is the --type word
and the payload length (or --length), followed by both CRCs. All words are
printed swizzled, ready to paste into a dump or a linker script.`,
	Example: `  h5-table encode --type 0x06000000 0x00000065 0x00000001
  h5-table encode --type 0x09000000 --file payload.txt | h5-table validate --file -`,
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	typ, err := strconv.ParseUint(strings.ReplaceAll(encodeType, "_", ""), 0, 32)
	if err != nil {
		return fmt.Errorf("invalid --type %q: %w", encodeType, err)
	}

	payload, err := wordsFromArgs(cmd, args, encodeFile)
	if err != nil {
		return err
	}

	var stored []uint32
	if encodeLength < 0 {
		stored = table.EncodeWithLength(uint32(typ), payload)
	} else {
		if encodeLength > 0xFFFFFFFF {
			return fmt.Errorf("--length %d does not fit a word", encodeLength)
		}
		stored = table.Encode([]uint32{uint32(typ), uint32(encodeLength)}, payload)
	}
	return table.FormatWords(cmd.OutOrStdout(), stored, encodePerLine)
}

func wordsFromArgs(cmd *cobra.Command, args []string, file string) ([]uint32, error) {
	if file != "" && len(args) > 0 {
		return nil, fmt.Errorf("give words as arguments or --file, not both")
	}
	if file != "" {
		data, err := readInput(cmd, file)
		if err != nil {
			return nil, err
		}
		return table.ParseWords(strings.NewReader(string(data)))
	}
	return table.ParseWords(strings.NewReader(strings.Join(args, " ")))
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the embedded table profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		catalog, err := table.LoadProfiles()
		if err != nil {
			return err
		}

		tw := tablewriter.NewWriter(cmd.OutOrStdout())
		tw.SetHeader([]string{"Name", "Words", "Length", "Order", "Description"})
		tw.SetAutoFormatHeaders(false)
		tw.SetAutoWrapText(false)
		for _, name := range catalog.Names() {
			p, _ := catalog.Get(name)
			length := "implicit"
			if p.Layout.LengthFromHeader {
				length = "header"
			}
			order := "descending"
			if p.Layout.Ascending {
				order = "ascending"
			}
			tw.Append([]string{p.Name, strconv.Itoa(len(p.Words)), length, order, p.Description})
		}
		tw.Render()
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a profile's stored words",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		catalog, err := table.LoadProfiles()
		if err != nil {
			return err
		}
		p, err := catalog.Lookup(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", p)
		fmt.Fprintf(out, "# header_words=%d length_from_header=%t ascending=%t\n",
			p.Layout.MinWords()-2, p.Layout.LengthFromHeader, p.Layout.Ascending)
		return table.FormatWords(out, p.Words, 4)
	},
}
