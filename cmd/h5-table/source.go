package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/h5bank/internal/elfimage"
	"github.com/muurk/h5bank/internal/logging"
	"github.com/muurk/h5bank/internal/table"
)

// Input formats accepted by --format.
const (
	formatText  = "text"
	formatBinLE = "bin-le"
	formatBinBE = "bin-be"
)

// sourceOptions selects where table words come from.
type sourceOptions struct {
	profile string
	file    string
	format  string
	elf     string
	section string
	offset  int
	count   int

	ascending        bool
	lengthFromHeader bool
}

// source is a loaded word sequence and the layout to decode it with.
type source struct {
	words  []uint32
	layout table.Layout
	label  string
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.profile, "profile", "p", "", "Embedded table profile (see 'h5-table profiles')")
	f.StringVarP(&o.file, "file", "f", "", "Read stored words from a file ('-' for stdin)")
	f.StringVar(&o.format, "format", formatText, "Format of --file: text, bin-le or bin-be")
	f.StringVar(&o.elf, "elf", "", "Read stored words from an ELF section")
	f.StringVar(&o.section, "section", "", "Section name for --elf")
	f.IntVar(&o.offset, "offset", 0, "Byte offset of the table within --file or --section")
	f.IntVar(&o.count, "count", 0, "Number of words to read (0 = all)")
	f.BoolVar(&o.ascending, "ascending", false, "Render payload word 0 first (overrides the profile)")
	f.BoolVar(&o.lengthFromHeader, "length-from-header", false, "Take the payload length from the header length word (overrides the profile)")
}

// load resolves the options into words and a layout. Profile layouts apply
// unless --ascending or --length-from-header were given explicitly.
func (o *sourceOptions) load(cmd *cobra.Command, fs afero.Fs, stdin io.Reader) (*source, error) {
	src := &source{layout: table.DefaultLayout()}

	if o.profile != "" {
		catalog, err := table.LoadProfiles()
		if err != nil {
			return nil, err
		}
		p, err := catalog.Lookup(o.profile)
		if err != nil {
			return nil, err
		}
		src.layout = p.Layout
		src.words = p.Words
		src.label = "profile " + p.Name
	}

	switch {
	case o.file != "" && o.elf != "":
		return nil, fmt.Errorf("--file and --elf are mutually exclusive")
	case o.file != "":
		words, err := o.readFile(fs, stdin)
		if err != nil {
			return nil, err
		}
		src.words = words
		src.label = o.file
	case o.elf != "":
		words, err := o.readELF(fs)
		if err != nil {
			return nil, err
		}
		src.words = words
		src.label = o.elf + ":" + o.section
	case o.profile == "":
		return nil, fmt.Errorf("no table given: use --profile, --file or --elf")
	}

	if len(src.words) == 0 {
		return nil, fmt.Errorf("%s has no words", src.label)
	}
	if o.count > 0 {
		if o.count > len(src.words) {
			return nil, fmt.Errorf("--count %d exceeds the %d words available", o.count, len(src.words))
		}
		src.words = src.words[:o.count]
	}

	if cmd.Flags().Changed("ascending") {
		src.layout.Ascending = o.ascending
	}
	if cmd.Flags().Changed("length-from-header") {
		src.layout.LengthFromHeader = o.lengthFromHeader
	}

	logging.Debug("loaded table words",
		zap.String("source", src.label),
		zap.Int("words", len(src.words)),
		zap.Bool("ascending", src.layout.Ascending),
		zap.Bool("length_from_header", src.layout.LengthFromHeader),
	)
	logging.LogWords("stored", src.words)
	return src, nil
}

func (o *sourceOptions) readFile(fs afero.Fs, stdin io.Reader) ([]uint32, error) {
	var data []byte
	var err error
	if o.file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(fs, o.file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", o.file, err)
	}

	switch strings.ToLower(o.format) {
	case formatText:
		if o.offset != 0 {
			return nil, fmt.Errorf("--offset applies to binary input only")
		}
		return table.ParseWords(strings.NewReader(string(data)))
	case formatBinLE:
		return sliceWords(data, o.offset, binary.LittleEndian)
	case formatBinBE:
		return sliceWords(data, o.offset, binary.BigEndian)
	default:
		return nil, fmt.Errorf("unknown --format %q (want %s, %s or %s)", o.format, formatText, formatBinLE, formatBinBE)
	}
}

func (o *sourceOptions) readELF(fs afero.Fs) ([]uint32, error) {
	if o.section == "" {
		return nil, fmt.Errorf("--elf requires --section")
	}
	img, err := elfimage.Open(fs, o.elf)
	if err != nil {
		return nil, err
	}
	data, err := img.SectionData(o.section)
	if err != nil {
		return nil, err
	}
	return sliceWords(data, o.offset, img.ByteOrder())
}

func sliceWords(data []byte, offset int, order binary.ByteOrder) ([]uint32, error) {
	if offset < 0 || offset > len(data) {
		return nil, fmt.Errorf("offset %d outside %d bytes of input", offset, len(data))
	}
	if offset%4 != 0 {
		return nil, fmt.Errorf("offset %d is not word aligned", offset)
	}
	data = data[offset:]
	// Trailing bytes past the last whole word are not part of any table.
	return table.BytesToWords(data[:len(data)&^3], order)
}
