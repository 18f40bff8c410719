// Package table implements the CRC32-checked table format embedded in the
// STM32H5 boot images.
//
// A table is a flat sequence of 32-bit words. Words are stored byte-swapped
// (the order a debugger shows when dumping the blob) and must be unswizzled
// into native order before any arithmetic:
//
//	stored:  0x00000082 0x15000000 0x369BC3C9 ... 0x997D0651
//	native:  0x82000000 0x00000015 0xC9C39B36 ... 0x51067D99
//
// The native words are laid out as:
//
//	┌──────────────┬──────────────┬────────────┬───────────────┬──────────────┐
//	│ header[0]    │ header[1]    │ header CRC │ payload ...   │ payload CRC  │
//	│ type / flags │ length       │            │               │              │
//	└──────────────┴──────────────┴────────────┴───────────────┴──────────────┘
//
// Both checksums are Ethernet CRC32 (CRC-32/ISO-HDLC) computed over the
// native words serialized least-significant byte first.
//
// # Validation policy
//
// Validation and rendering are independent. Validate is fail-fast and
// returns the first mismatch. Decode only splits the words, and Check
// reports every mismatch so a caller can still render a table it knows to
// be broken:
//
//	t, err := layout.Decode(words)
//	if err != nil {
//	    return err // too short, or length word disagrees
//	}
//	for _, mismatch := range t.Check() {
//	    logging.Warn("table check failed", zap.Error(mismatch))
//	}
//	for _, line := range table.RenderPayload(t.Payload, layout.Ascending) {
//	    fmt.Println(line)
//	}
//
// # Profiles
//
// The known tables are described in an embedded catalog (profiles.yaml). A
// profile carries the layout and, optionally, the literal stored words from
// the debug session that produced it.
//
// All functions in this package are pure and safe for concurrent use.
package table
