// Package elfimage inspects firmware ELF images and duplicates secure
// sections into the second flash bank.
//
// The STM32H573 secure image is linked for bank 1. For bank swap and
// backup the same code has to exist in bank 2, so each configured section
// is copied, renamed with a suffix and rebased by the bank offset:
//
//	.text            0x0c000200  ->  .text_copy   0x0c100200
//	.isr_vector      0x0c000000  ->  .isr_vector_copy 0x0c100000
//
// Copies are appended as new sections with an extended .shstrtab and a
// rewritten section header table. Program headers are left alone, so the
// copies are not part of any loadable segment; they are flashed from the
// Intel HEX written by WriteIntelHex or by external tooling.
//
// Section bytes come from an Extractor. NativeExtractor reads them in
// process; ObjcopyExtractor shells out to arm-none-eabi-objcopy
// --dump-section for parity with the vendor toolchain.
package elfimage
