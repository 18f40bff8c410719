package table

// DefaultHeaderWords is the header size of every table format seen so far:
// a type/flags word followed by a length word.
const DefaultHeaderWords = 2

// Layout describes how a word sequence splits into a table.
type Layout struct {
	// HeaderWords is the number of header words before the header CRC.
	// Zero means DefaultHeaderWords.
	HeaderWords int `yaml:"header_words"`

	// LengthFromHeader makes the last header word the payload length in
	// words. When false the payload is everything between the header CRC
	// and the final word.
	LengthFromHeader bool `yaml:"length_from_header"`

	// Ascending renders payload word 0 first. When false the highest word
	// is printed first.
	Ascending bool `yaml:"ascending"`
}

// DefaultLayout returns the two-word header layout with an implicit
// payload length.
func DefaultLayout() Layout {
	return Layout{HeaderWords: DefaultHeaderWords}
}

func (l Layout) headerWords() int {
	if l.HeaderWords <= 0 {
		return DefaultHeaderWords
	}
	return l.HeaderWords
}

// MinWords returns the smallest table this layout accepts: the header, the
// header CRC and the payload CRC with an empty payload.
func (l Layout) MinWords() int {
	return l.headerWords() + 2
}

// Table is a decoded table in native word order. It is never modified after
// Decode returns it.
type Table struct {
	Header     []uint32
	HeaderCRC  uint32
	Payload    []uint32
	PayloadCRC uint32
}

// Type returns the type/flags word.
func (t *Table) Type() uint32 {
	return t.Header[0]
}

// DeclaredLength returns the length word (the last header word).
func (t *Table) DeclaredLength() uint32 {
	return t.Header[len(t.Header)-1]
}

// Words returns the full table in native order.
func (t *Table) Words() []uint32 {
	words := make([]uint32, 0, len(t.Header)+len(t.Payload)+2)
	words = append(words, t.Header...)
	words = append(words, t.HeaderCRC)
	words = append(words, t.Payload...)
	words = append(words, t.PayloadCRC)
	return words
}

// Stored returns the full table in stored (swizzled) order.
func (t *Table) Stored() []uint32 {
	return UnswizzleAll(t.Words())
}

// ComputedHeaderCRC returns CRC32 over the header words.
func (t *Table) ComputedHeaderCRC() uint32 {
	return EthernetCRC32(t.Header)
}

// ComputedPayloadCRC returns CRC32 over the payload words.
func (t *Table) ComputedPayloadCRC() uint32 {
	return EthernetCRC32(t.Payload)
}

// Check verifies both checksums and returns every mismatch found, header
// first. A nil result means the table is valid.
func (t *Table) Check() []*ValidationError {
	var errs []*ValidationError
	words := len(t.Header) + len(t.Payload) + 2

	if crc := t.ComputedHeaderCRC(); crc != t.HeaderCRC {
		errs = append(errs, &ValidationError{
			Kind:     HeaderCRCMismatch,
			Expected: t.HeaderCRC,
			Actual:   crc,
			Words:    words,
		})
	}

	if crc := t.ComputedPayloadCRC(); crc != t.PayloadCRC {
		errs = append(errs, &ValidationError{
			Kind:     PayloadCRCMismatch,
			Expected: t.PayloadCRC,
			Actual:   crc,
			Words:    words,
		})
	}

	return errs
}

// Valid reports whether both checksums match.
func (t *Table) Valid() bool {
	return len(t.Check()) == 0
}

// Decode unswizzles stored words and splits them according to the layout.
// It checks structure only; checksums are left to Check.
func (l Layout) Decode(stored []uint32) (*Table, error) {
	h := l.headerWords()
	n := len(stored)

	if n < l.MinWords() {
		return nil, &ValidationError{
			Kind:     MalformedTable,
			Expected: uint32(l.MinWords()),
			Actual:   uint32(n),
			Words:    n,
		}
	}

	native := UnswizzleAll(stored)
	t := &Table{
		Header:     native[:h:h],
		HeaderCRC:  native[h],
		Payload:    native[h+1 : n-1 : n-1],
		PayloadCRC: native[n-1],
	}

	if l.LengthFromHeader {
		declared := t.DeclaredLength()
		if uint64(declared) != uint64(len(t.Payload)) {
			return nil, &ValidationError{
				Kind:     LengthMismatch,
				Expected: declared,
				Actual:   uint32(len(t.Payload)),
				Words:    n,
			}
		}
	}

	return t, nil
}

// Validate decodes stored words and fails on the first checksum mismatch.
func (l Layout) Validate(stored []uint32) (*Table, error) {
	t, err := l.Decode(stored)
	if err != nil {
		return nil, err
	}
	if errs := t.Check(); len(errs) > 0 {
		return nil, errs[0]
	}
	return t, nil
}

// Decode splits stored words using DefaultLayout.
func Decode(stored []uint32) (*Table, error) {
	return DefaultLayout().Decode(stored)
}

// Validate validates stored words using DefaultLayout.
func Validate(stored []uint32) (*Table, error) {
	return DefaultLayout().Validate(stored)
}

// Encode builds a stored-order table from native header and payload words,
// computing both checksums.
func Encode(header, payload []uint32) []uint32 {
	t := &Table{
		Header:     header,
		HeaderCRC:  EthernetCRC32(header),
		Payload:    payload,
		PayloadCRC: EthernetCRC32(payload),
	}
	return t.Stored()
}

// EncodeWithLength builds a stored-order table whose header is the given
// type word followed by the payload length.
func EncodeWithLength(typ uint32, payload []uint32) []uint32 {
	return Encode([]uint32{typ, uint32(len(payload))}, payload)
}
