// Package linker patches GNU ld linker scripts.
//
// The STM32H573 template script declares the bank-2 backup region as an
// ordinary output section, so the linker emits it as loadable data and the
// programmer erases bank 2 on every flash. Marking the section NOLOAD keeps
// the address space reserved without emitting contents:
//
//	.BACKUP_Section :            ->   .BACKUP_Section (NOLOAD):
//	{                                 {
//
// Patching is line oriented. A line is a declaration of the section when
// it starts (after indentation) with the exact section name followed by an
// optional "(NOLOAD)" and a colon. Lines that already carry NOLOAD are left
// unchanged, so patching twice is a no-op.
package linker
