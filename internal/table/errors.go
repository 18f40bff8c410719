package table

import "fmt"

// ErrorKind classifies a table validation failure.
type ErrorKind int

const (
	// HeaderCRCMismatch means CRC32(header) differs from the stored header CRC word.
	HeaderCRCMismatch ErrorKind = iota + 1
	// PayloadCRCMismatch means CRC32(payload) differs from the trailing CRC word.
	PayloadCRCMismatch
	// MalformedTable means too few words to hold a header and both CRC words.
	MalformedTable
	// LengthMismatch means the header length word disagrees with the number
	// of payload words supplied.
	LengthMismatch
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case HeaderCRCMismatch:
		return "HeaderCrcMismatch"
	case PayloadCRCMismatch:
		return "PayloadCrcMismatch"
	case MalformedTable:
		return "MalformedTable"
	case LengthMismatch:
		return "LengthMismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ValidationError describes why a table failed to validate.
//
// For CRC mismatches Expected is the CRC word stored in the table and Actual
// is the CRC computed over the words it protects. For MalformedTable,
// Expected is the minimum word count and Actual the count supplied. For
// LengthMismatch, Expected is the payload length declared in the header and
// Actual the payload length found.
type ValidationError struct {
	Kind     ErrorKind
	Expected uint32
	Actual   uint32
	// Words is the total number of words in the table
	Words int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case HeaderCRCMismatch:
		return fmt.Sprintf("incorrect header CRC: stored 0x%08x, computed 0x%08x", e.Expected, e.Actual)
	case PayloadCRCMismatch:
		return fmt.Sprintf("incorrect data CRC: stored 0x%08x, computed 0x%08x", e.Expected, e.Actual)
	case MalformedTable:
		return fmt.Sprintf("malformed table: %d words, need at least %d", e.Actual, e.Expected)
	case LengthMismatch:
		return fmt.Sprintf("table length mismatch: header declares %d payload words, found %d", e.Expected, e.Actual)
	default:
		return fmt.Sprintf("table validation failed (%s)", e.Kind)
	}
}

// Is reports whether target is a *ValidationError of the same kind, so the
// sentinels below work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrHeaderCRC  = &ValidationError{Kind: HeaderCRCMismatch}
	ErrPayloadCRC = &ValidationError{Kind: PayloadCRCMismatch}
	ErrMalformed  = &ValidationError{Kind: MalformedTable}
	ErrLength     = &ValidationError{Kind: LengthMismatch}
)
