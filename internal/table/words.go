package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WordParseError reports a token in a word list that is not a 32-bit value.
type WordParseError struct {
	// Line is the 1-based line of the token
	Line int
	// Token is the offending text
	Token string
	// Underlying error
	Err error
}

func (e *WordParseError) Error() string {
	return fmt.Sprintf("line %d: invalid word %q: %v", e.Line, e.Token, e.Err)
}

func (e *WordParseError) Unwrap() error {
	return e.Err
}

// ErrPartialWord is returned when a binary blob is not a whole number of words.
var ErrPartialWord = errors.New("blob length is not a multiple of 4 bytes")

// ParseWords reads a text list of words. Values may be hex (0x prefix),
// octal (0o), binary (0b) or decimal and are separated by commas or
// whitespace. Text after '#' is ignored. If the input contains a bracketed
// list, only the text between the first '[' and the last ']' is read, so a
// list pasted from a script works as-is:
//
//	loader = [
//	    0x00000082, 0x15000000, 0x369BC3C9,
//	    ...
//	]
func ParseWords(r io.Reader) ([]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	text := stripComments(string(data))
	text = bracketBody(text)

	var words []uint32
	for n, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, ",", " ")
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseUint(strings.ReplaceAll(tok, "_", ""), 0, 32)
			if err != nil {
				return nil, &WordParseError{Line: n + 1, Token: tok, Err: err}
			}
			words = append(words, uint32(v))
		}
	}
	return words, nil
}

// stripComments drops everything from '#' to the end of each line.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// bracketBody blanks out text outside the outermost brackets while keeping
// newlines, so reported line numbers stay correct.
func bracketBody(text string) string {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		return text
	}
	end := strings.LastIndexByte(text, ']')
	if end < open {
		end = len(text)
	}

	b := []byte(text)
	for i := range b {
		if (i <= open || i >= end) && b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// ReadBinaryWords reads a raw blob of words in the given byte order.
func ReadBinaryWords(r io.Reader, order binary.ByteOrder) ([]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return BytesToWords(data, order)
}

// BytesToWords splits data into words in the given byte order.
func BytesToWords(data []byte, order binary.ByteOrder) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w (%d bytes)", ErrPartialWord, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[4*i:])
	}
	return words, nil
}

// FormatWords writes words as a comma-separated hex list, perLine values
// per line. A perLine of zero or less means 4.
func FormatWords(w io.Writer, words []uint32, perLine int) error {
	if perLine <= 0 {
		perLine = 4
	}
	for i := 0; i < len(words); i += perLine {
		end := i + perLine
		if end > len(words) {
			end = len(words)
		}
		parts := make([]string, 0, perLine)
		for _, word := range words[i:end] {
			parts = append(parts, fmt.Sprintf("0x%08X", word))
		}
		sep := ","
		if end == len(words) {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Join(parts, ", "), sep); err != nil {
			return err
		}
	}
	return nil
}
